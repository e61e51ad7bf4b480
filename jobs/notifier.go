package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/airwatch-bd/airwatch/internal/users"
)

// Enqueuer is the subset of *asynq.Client used to submit tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// WelcomeNotifier queues a welcome e-mail for every committed registration.
type WelcomeNotifier struct {
	queue Enqueuer
}

// NewWelcomeNotifier constructs a WelcomeNotifier.
func NewWelcomeNotifier(queue Enqueuer) *WelcomeNotifier {
	return &WelcomeNotifier{queue: queue}
}

// Registered enqueues the welcome e-mail for account.
func (n *WelcomeNotifier) Registered(ctx context.Context, account users.Account) error {
	task, err := NewSendEmailTask(SendEmailPayload{
		To:      account.Email,
		Subject: "Welcome to AirWatch BD",
		Body: fmt.Sprintf("Hi %s,\n\nYour account is ready. Log in to follow the air quality in %s and up to nine more cities.\n",
			account.FullName, account.PreferredCity),
	})
	if err != nil {
		return err
	}
	if _, err := n.queue.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		return fmt.Errorf("jobs: enqueue welcome email: %w", err)
	}
	return nil
}
