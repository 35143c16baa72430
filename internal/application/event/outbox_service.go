package event

import (
	"context"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Trigger wakes the outbox processor after entries were reset
type Trigger interface {
	Trigger()
}

// OutboxService exposes the outbox to admins: delivery stats and the dead
// letter queue of notifications that ran out of retries
type OutboxService struct {
	repo    shared.OutboxRepository
	trigger Trigger
	logger  *zap.Logger
}

// NewOutboxService creates a new outbox service. trigger may be nil.
func NewOutboxService(repo shared.OutboxRepository, trigger Trigger, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{repo: repo, trigger: trigger, logger: logger}
}

// OutboxEntryResponse is the admin view of an outbox entry
type OutboxEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OutboxFilter pages the dead letter list
type OutboxFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OutboxStats counts entries per status
type OutboxStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// ListDead pages through dead letter entries, newest first
func (s *OutboxService) ListDead(ctx context.Context, filter OutboxFilter) (shared.Paginated[OutboxEntryResponse], error) {
	f := shared.NewFilter(filter.Page, filter.PageSize, "", "", "")
	entries, total, err := s.repo.FindDead(ctx, f.Page, f.PageSize)
	if err != nil {
		s.logger.Error("Failed to find dead letter entries", zap.Error(err))
		return shared.Paginated[OutboxEntryResponse]{}, err
	}

	out := make([]OutboxEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toOutboxEntryResponse(e))
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// Get returns a single entry
func (s *OutboxService) Get(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toOutboxEntryResponse(entry)
	return &resp, nil
}

// RetryDead puts a dead entry back in the queue
func (s *OutboxService) RetryDead(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to reset outbox entry", zap.String("id", id.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Dead letter entry reset for retry",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType),
	)
	s.wake()
	resp := toOutboxEntryResponse(entry)
	return &resp, nil
}

// RetryAllDead resets every dead entry and returns how many were reset.
// Entries that fail to update are logged and skipped.
func (s *OutboxService) RetryAllDead(ctx context.Context) (int64, error) {
	const pageSize = 100
	var count int64
	for {
		// reset entries leave the dead set, so the first page is always fresh
		entries, _, err := s.repo.FindDead(ctx, 1, pageSize)
		if err != nil {
			return count, err
		}
		reset := 0
		for _, entry := range entries {
			if entry.ResetForRetry() != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Error("Failed to reset outbox entry", zap.String("id", entry.ID.String()), zap.Error(err))
				continue
			}
			reset++
		}
		count += int64(reset)
		if len(entries) < pageSize || reset == 0 {
			break
		}
	}

	s.logger.Info("Retried dead letter entries", zap.Int64("count", count))
	if count > 0 {
		s.wake()
	}
	return count, nil
}

// Stats counts entries per status
func (s *OutboxService) Stats(ctx context.Context) (*OutboxStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	return &OutboxStats{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

func (s *OutboxService) wake() {
	if s.trigger != nil {
		s.trigger.Trigger()
	}
}

func toOutboxEntryResponse(e *shared.OutboxEntry) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
