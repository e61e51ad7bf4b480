package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/airwatch-bd/airwatch/internal/jobs"
	"github.com/airwatch-bd/airwatch/internal/users"
)

type captureQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *captureQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Queue: QueueDefault, Type: task.Type()}, nil
}

type captureMailer struct {
	sent []SendEmailPayload
	err  error
}

func (m *captureMailer) Send(ctx context.Context, msg SendEmailPayload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fixedPurger struct {
	n   int64
	err error
}

func (p fixedPurger) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return p.n, p.err
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func TestWelcomeNotifierEnqueuesEmail(t *testing.T) {
	queue := &captureQueue{}
	notifier := NewWelcomeNotifier(queue)

	err := notifier.Registered(context.Background(), users.Account{ID: 1, FullName: "Rahim Uddin", Email: "21-45678-2@student.aiub.edu", PreferredCity: "Dhaka"})
	require.NoError(t, err)
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, TaskTypeSendEmail, queue.tasks[0].Type())

	var payload SendEmailPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	assert.Equal(t, "21-45678-2@student.aiub.edu", payload.To)
	assert.Contains(t, payload.Body, "Dhaka")
}

func TestWelcomeNotifierReportsQueueFailure(t *testing.T) {
	notifier := NewWelcomeNotifier(&captureQueue{err: errors.New("redis down")})
	err := notifier.Registered(context.Background(), users.Account{Email: "a@b.c"})
	assert.ErrorContains(t, err, "enqueue welcome email")
}

func TestEmailJobSends(t *testing.T) {
	mailer := &captureMailer{}
	job := NewEmailJob(mailer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewSendEmailTask(SendEmailPayload{To: "x@student.aiub.edu", Subject: "Hi", Body: "Body"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Hi", mailer.sent[0].Subject)
}

func TestEmailJobSkipsMalformedPayload(t *testing.T) {
	job := NewEmailJob(&captureMailer{}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestEmailJobRetriesOnSendFailure(t *testing.T) {
	job := NewEmailJob(&captureMailer{err: errors.New("smtp down")}, nil, nil)
	task, err := NewSendEmailTask(SendEmailPayload{To: "x@student.aiub.edu"})
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestPurgeSessionsJob(t *testing.T) {
	job := NewPurgeSessionsJob(fixedPurger{n: 3}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	assert.NoError(t, job.Handle(context.Background(), NewPurgeLoginSessionsTask()))

	failing := NewPurgeSessionsJob(fixedPurger{err: errors.New("db down")}, nil, nil)
	assert.Error(t, failing.Handle(context.Background(), NewPurgeLoginSessionsTask()))
}

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{"no inspector", nil, http.StatusOK, 0},
		{"queue info", fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4}}, http.StatusOK, 4},
		{"queue not created yet", fakeInspector{err: asynq.ErrQueueNotFound}, http.StatusOK, 0},
		{"redis down", fakeInspector{err: errors.New("dial tcp")}, http.StatusServiceUnavailable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.status, rec.Code)
			if tc.status != http.StatusOK {
				return
			}
			var body queueHealth
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.pending, body.Pending)
		})
	}
}
