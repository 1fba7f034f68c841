package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/model"
	"github.com/ademateus/field-service-portal/internal/stream"
)

// AgendaStore is the persistence seam for the materializer service.
type AgendaStore interface {
	ActiveSlots(ctx context.Context) ([]model.SlotTemplate, error)
	AllSessions(ctx context.Context) ([]model.TrainingSession, error)
	BlockedDates(ctx context.Context) ([]string, error)
	InsertSessions(ctx context.Context, staged []agenda.Staged, createdBy *uint64) error
}

// MaterializeResult reports what a materializer run did, in the shape
// the coordinator UI displays.
type MaterializeResult struct {
	Month            string `json:"month"`
	Created          int    `json:"created"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
	SkippedLimit     int    `json:"skipped_limit"`
}

// Nothing reports whether the run had nothing to create, meaning the
// month's agenda is already open.
func (r MaterializeResult) Nothing() bool { return r.Created == 0 }

// AgendaService opens the monthly agenda: it expands active slot
// templates into dated sessions via the pure planner and bulk-inserts
// the staged rows.
type AgendaService struct {
	store AgendaStore
	opts  agenda.Options
	feed  *stream.Hub
	log   *zap.Logger
}

// NewAgendaService wires an agenda service. feed may be nil.
func NewAgendaService(store AgendaStore, opts agenda.Options, feed *stream.Hub, log *zap.Logger) *AgendaService {
	return &AgendaService{store: store, opts: opts, feed: feed, log: log}
}

// Materialize opens the agenda for a "YYYY-MM" month. Validation
// failures (bad month, no active slots, more active slots than the
// daily limit) surface before anything is read or written. Re-running
// for an already-open month creates nothing and reports every slot/day
// pair as a duplicate.
func (s *AgendaService) Materialize(ctx context.Context, month string, createdBy *uint64) (MaterializeResult, error) {
	slots, err := s.store.ActiveSlots(ctx)
	if err != nil {
		return MaterializeResult{}, err
	}
	existing, err := s.store.AllSessions(ctx)
	if err != nil {
		return MaterializeResult{}, err
	}
	blocked, err := s.store.BlockedDates(ctx)
	if err != nil {
		return MaterializeResult{}, err
	}

	plan, err := agenda.BuildPlan(month, slots, existing, blocked, s.opts)
	if err != nil {
		return MaterializeResult{}, err
	}

	res := MaterializeResult{
		Month:            month,
		Created:          len(plan.Staged),
		SkippedDuplicate: plan.SkippedDuplicate,
		SkippedLimit:     plan.SkippedLimit,
	}
	if plan.Empty() {
		return res, nil
	}

	if err := s.store.InsertSessions(ctx, plan.Staged, createdBy); err != nil {
		return MaterializeResult{}, err
	}
	s.log.Info("agenda materialized",
		zap.String("month", month),
		zap.Int("created", res.Created),
		zap.Int("skipped_duplicate", res.SkippedDuplicate),
		zap.Int("skipped_limit", res.SkippedLimit))
	if s.feed != nil {
		s.feed.Publish(stream.NewChangeEvent("training_sessions", "INSERT", res))
	}
	return res, nil
}
