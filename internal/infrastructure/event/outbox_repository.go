package event

import (
	"context"
	"errors"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// claimable are the states the processor may pick an entry up from
var claimable = []shared.OutboxStatus{shared.OutboxStatusPending, shared.OutboxStatusFailed}

// GormOutboxRepository stores outbox entries next to the bakery tables. Writes
// join the transaction in ctx, which is what makes SaveEvents atomic with the
// order or stock change that raised the events.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) conn(ctx context.Context) *gorm.DB {
	return persistence.DBFromContext(ctx, r.db)
}

func inStatus(status ...shared.OutboxStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(status) == 1 {
			return db.Where("status = ?", status[0])
		}
		return db.Where("status IN ?", status)
	}
}

func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.conn(ctx).Create(entries).Error
}

func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry := &shared.OutboxEntry{}
	err := r.conn(ctx).Where("id = ?", id).Take(entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FindPending returns the oldest PENDING entries first
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var entries []*shared.OutboxEntry
	err := r.conn(ctx).Scopes(inStatus(shared.OutboxStatusPending)).
		Order("created_at").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *GormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	var entries []*shared.OutboxEntry
	err := r.conn(ctx).Scopes(inStatus(shared.OutboxStatusFailed)).
		Where("next_retry_at <= ?", before).
		Order("next_retry_at").Limit(limit).Find(&entries).Error
	return entries, err
}

// FindDead pages through dead entries, most recently failed first
func (r *GormOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	query := r.conn(ctx).Model(&shared.OutboxEntry{}).Scopes(inStatus(shared.OutboxStatusDead))

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = max(page, 1)
	var entries []*shared.OutboxEntry
	err := query.Order("updated_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// MarkProcessing moves the claimable entries among ids to PROCESSING and
// returns them. Two processors racing for the same ids split them: postgres
// skips rows the other holds locked, sqlite serialises the transactions.
func (r *GormOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var claimed []*shared.OutboxEntry
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		sel := tx.Scopes(inStatus(claimable...)).Where("id IN ?", ids)
		if tx.Dialector.Name() == "postgres" {
			sel = sel.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := sel.Find(&claimed).Error; err != nil || len(claimed) == 0 {
			return err
		}

		now := time.Now()
		won := make([]uuid.UUID, 0, len(claimed))
		for _, e := range claimed {
			e.Status, e.UpdatedAt = shared.OutboxStatusProcessing, now
			won = append(won, e.ID)
		}
		return tx.Model(&shared.OutboxEntry{}).Where("id IN ?", won).
			Updates(map[string]any{"status": shared.OutboxStatusProcessing, "updated_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Update saves the delivery fields only; the payload never changes
func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	entry.UpdatedAt = time.Now()
	return r.conn(ctx).Model(entry).
		Select("status", "retry_count", "last_error", "next_retry_at", "processed_at", "updated_at").
		Updates(entry).Error
}

// DeleteOlderThan purges SENT entries delivered before the cutoff
func (r *GormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.conn(ctx).Scopes(inStatus(shared.OutboxStatusSent)).
		Where("processed_at < ?", before).
		Delete(&shared.OutboxEntry{})
	return res.RowsAffected, res.Error
}

func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	var rows []struct {
		Status shared.OutboxStatus
		N      int64
	}
	err := r.conn(ctx).Model(&shared.OutboxEntry{}).
		Select("status, COUNT(*) AS n").Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[shared.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
