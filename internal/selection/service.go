// Package selection records which catalog cities a logged in user wants to watch.
package selection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/airwatch-bd/airwatch/internal/cities"
	"github.com/airwatch-bd/airwatch/internal/observability"
	"github.com/airwatch-bd/airwatch/internal/shared"
)

// SessionKey is the session key holding the selected city names.
const SessionKey = "selected_cities"

// MaxCities bounds a selection.
const MaxCities = 10

type selectionError struct {
	text string
	msg  string
}

func (e *selectionError) Error() string       { return e.text }
func (e *selectionError) UserMessage() string { return e.msg }

var (
	// ErrSelectionSize is returned for an empty selection or one over MaxCities.
	ErrSelectionSize error = &selectionError{
		text: "selection: size out of range",
		msg:  "Please select at least 1 and at most 10 cities to proceed.",
	}
	// ErrUnknownCity is returned when a name is not in the catalog.
	ErrUnknownCity error = &selectionError{
		text: "selection: unknown city",
		msg:  "One or more selected cities are not available.",
	}
)

// State is the per-session storage of the selection. *shared.Session satisfies it.
type State interface {
	GetJSON(key string, dst any) (bool, error)
	SetJSON(key string, value any) error
}

// Catalog looks up cities by name.
type Catalog interface {
	FindByNames(ctx context.Context, names []string) ([]cities.City, error)
}

// Service implements the selection workflow.
type Service struct {
	catalog Catalog
	metrics *observability.Metrics
}

// NewService constructs a Service. metrics may be nil.
func NewService(catalog Catalog, metrics *observability.Metrics) *Service {
	return &Service{catalog: catalog, metrics: metrics}
}

// Select replaces the selection of st with names. On error the previous selection is
// kept.
func (s *Service) Select(ctx context.Context, st State, userID string, names []string) error {
	if userID == "" {
		return shared.ErrNotAuthenticated
	}
	if len(names) == 0 || len(names) > MaxCities {
		s.metrics.RecordWorkflow("selection", "size")
		return ErrSelectionSize
	}

	unique := dedupe(names)
	if len(unique) == 0 {
		s.metrics.RecordWorkflow("selection", "size")
		return ErrSelectionSize
	}
	found, err := s.catalog.FindByNames(ctx, unique)
	if err != nil {
		return fmt.Errorf("selection: lookup: %w", err)
	}
	if len(found) != len(unique) {
		s.metrics.RecordWorkflow("selection", "unknown")
		return ErrUnknownCity
	}

	if err := st.SetJSON(SessionKey, unique); err != nil {
		return fmt.Errorf("selection: save: %w", err)
	}
	s.metrics.RecordWorkflow("selection", "saved")
	return nil
}

// Selected returns the stored selection, sorted by name.
func (s *Service) Selected(ctx context.Context, st State) []string {
	var names []string
	if ok, err := st.GetJSON(SessionKey, &names); err != nil || !ok {
		return nil
	}
	return names
}

// Results classifies the selected cities, ordered by name.
func (s *Service) Results(ctx context.Context, st State) ([]cities.Reading, error) {
	names := s.Selected(ctx, st)
	if len(names) == 0 {
		return nil, nil
	}
	found, err := s.catalog.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("selection: results: %w", err)
	}
	return cities.Classify(found), nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
