package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(database.DB))
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

type outboxFixture struct {
	db         *gorm.DB
	repo       *GormOutboxRepository
	serializer *EventSerializer
	bus        *InMemoryEventBus
	processor  *OutboxProcessor
	publisher  *OutboxPublisher
	scope      *persistence.GormTransactionScope
}

func newOutboxFixture(t *testing.T, maxRetries int) *outboxFixture {
	t.Helper()
	db := newOutboxDB(t)

	f := &outboxFixture{
		db:         db,
		repo:       NewGormOutboxRepository(db),
		serializer: NewEventSerializer(),
		bus:        NewInMemoryEventBus(zap.NewNop()),
		scope:      persistence.NewGormTransactionScope(db),
	}
	RegisterType[testEvent](f.serializer, "Test")

	cfg := DefaultOutboxProcessorConfig()
	cfg.MaxRetries = maxRetries
	f.processor = NewOutboxProcessor(f.repo, f.bus, f.serializer, cfg, zap.NewNop())
	f.publisher = NewOutboxPublisher(f.serializer, f.repo, WithCommitNotifier(f.processor.Trigger))
	return f
}

func (f *outboxFixture) entry(t *testing.T, id uuid.UUID) *shared.OutboxEntry {
	t.Helper()
	e, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return e
}

func (f *outboxFixture) onlyEntry(t *testing.T) *shared.OutboxEntry {
	t.Helper()
	var entries []*shared.OutboxEntry
	require.NoError(t, f.db.Find(&entries).Error)
	require.Len(t, entries, 1)
	return entries[0]
}

type deliveryRecorder struct {
	mu   sync.Mutex
	ok   int
	fail int
	dead int
}

func (r *deliveryRecorder) ObserveDelivery(_ context.Context, _ string, ok, dead bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case ok:
		r.ok++
	case dead:
		r.dead++
	default:
		r.fail++
	}
}

func TestOutboxPublisher_SavesWithTransaction(t *testing.T) {
	f := newOutboxFixture(t, 3)
	ctx := context.Background()

	err := f.scope.Execute(ctx, func(ctx context.Context) error {
		return f.publisher.SaveEvents(ctx, newTestEvent("Test"), newTestEvent("Test"))
	})
	require.NoError(t, err)

	counts, err := f.repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[shared.OutboxStatusPending])

	select {
	case <-f.processor.wake:
	default:
		t.Fatal("commit should wake the processor")
	}
}

func TestOutboxPublisher_RollbackDropsEntries(t *testing.T) {
	f := newOutboxFixture(t, 3)
	ctx := context.Background()
	boom := errors.New("insufficient stock")

	err := f.scope.Execute(ctx, func(ctx context.Context) error {
		require.NoError(t, f.publisher.SaveEvents(ctx, newTestEvent("Test")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	counts, err := f.repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	select {
	case <-f.processor.wake:
		t.Fatal("rollback must not wake the processor")
	default:
	}
}

func TestOutboxPublisher_EmptyIsNoop(t *testing.T) {
	f := newOutboxFixture(t, 3)
	assert.NoError(t, f.publisher.SaveEvents(context.Background()))
}

func TestOutboxProcessor_DeliversPending(t *testing.T) {
	f := newOutboxFixture(t, 3)
	ctx := context.Background()
	h := newTestHandler("Test")
	f.bus.Subscribe(h)
	rec := &deliveryRecorder{}
	f.processor.SetObserver(rec)

	require.NoError(t, f.publisher.SaveEvents(ctx, newTestEvent("Test")))

	assert.Equal(t, 1, f.processor.ProcessOnce(ctx))
	assert.Equal(t, 1, h.count())
	assert.Equal(t, 1, rec.ok)

	e := f.onlyEntry(t)
	assert.Equal(t, shared.OutboxStatusSent, e.Status)
	assert.NotNil(t, e.ProcessedAt)

	assert.Equal(t, 0, f.processor.ProcessOnce(ctx), "sent entries are not delivered again")
	assert.Equal(t, 1, h.count())
}

func TestOutboxProcessor_RetriesUntilDead(t *testing.T) {
	f := newOutboxFixture(t, 2)
	ctx := context.Background()
	h := newTestHandler("Test")
	h.err = errors.New("smtp down")
	f.bus.Subscribe(h)
	rec := &deliveryRecorder{}
	f.processor.SetObserver(rec)

	require.NoError(t, f.publisher.SaveEvents(ctx, newTestEvent("Test")))

	assert.Equal(t, 0, f.processor.ProcessOnce(ctx))
	e := f.onlyEntry(t)
	assert.Equal(t, shared.OutboxStatusFailed, e.Status)
	assert.Equal(t, 1, e.RetryCount)
	assert.Equal(t, "smtp down", e.LastError)
	require.NotNil(t, e.NextRetryAt)

	// not due yet
	assert.Equal(t, 0, f.processor.ProcessOnce(ctx))
	assert.Equal(t, 1, h.count())

	require.NoError(t, f.db.Model(&shared.OutboxEntry{}).
		Where("id = ?", e.ID).
		Update("next_retry_at", time.Now().Add(-time.Minute)).Error)

	assert.Equal(t, 0, f.processor.ProcessOnce(ctx))
	e = f.entry(t, e.ID)
	assert.Equal(t, shared.OutboxStatusDead, e.Status)
	assert.Equal(t, 2, e.RetryCount)
	assert.Equal(t, 2, h.count())
	assert.Equal(t, 1, rec.fail)
	assert.Equal(t, 1, rec.dead)

	dead, total, err := f.repo.FindDead(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, dead, 1)

	h.err = nil
	require.NoError(t, f.processor.RetryDead(ctx, e.ID))
	assert.Equal(t, 1, f.processor.ProcessOnce(ctx))
	assert.Equal(t, shared.OutboxStatusSent, f.entry(t, e.ID).Status)
}

func TestOutboxProcessor_RetryDeadRejectsLiveEntry(t *testing.T) {
	f := newOutboxFixture(t, 3)
	ctx := context.Background()
	require.NoError(t, f.publisher.SaveEvents(ctx, newTestEvent("Test")))

	err := f.processor.RetryDead(ctx, f.onlyEntry(t).ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)

	assert.ErrorIs(t, f.processor.RetryDead(ctx, uuid.New()), shared.ErrNotFound)
}

func TestOutboxProcessor_UnknownTypeFails(t *testing.T) {
	f := newOutboxFixture(t, 1)
	ctx := context.Background()

	entry := shared.NewOutboxEntry(newTestEvent("Retired"), []byte(`{}`))
	require.NoError(t, f.repo.Save(ctx, entry))

	assert.Equal(t, 0, f.processor.ProcessOnce(ctx))
	e := f.entry(t, entry.ID)
	assert.Equal(t, shared.OutboxStatusDead, e.Status)
	assert.Contains(t, e.LastError, "unknown event type")
}

func TestOutboxProcessor_Cleanup(t *testing.T) {
	f := newOutboxFixture(t, 3)
	ctx := context.Background()
	f.bus.Subscribe(newTestHandler())

	require.NoError(t, f.publisher.SaveEvents(ctx, newTestEvent("Test"), newTestEvent("Test")))
	require.Equal(t, 2, f.processor.ProcessOnce(ctx))

	var first shared.OutboxEntry
	require.NoError(t, f.db.First(&first).Error)
	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, f.db.Model(&shared.OutboxEntry{}).
		Where("id = ?", first.ID).
		Update("processed_at", old).Error)

	f.processor.Cleanup(ctx)

	counts, err := f.repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])
}

func TestOutboxProcessor_StartTriggerStop(t *testing.T) {
	f := newOutboxFixture(t, 3)
	ctx := context.Background()
	h := newTestHandler("Test")
	f.bus.Subscribe(h)

	f.processor.config.PollInterval = time.Hour
	require.NoError(t, f.processor.Start(ctx))

	require.NoError(t, f.scope.Execute(ctx, func(ctx context.Context) error {
		return f.publisher.SaveEvents(ctx, newTestEvent("Test"))
	}))

	assert.Eventually(t, func() bool { return h.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, f.processor.Stop(stopCtx))
}

func TestGormOutboxRepository_MarkProcessingSkipsLockedRowsOnPostgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "outbox_entries" WHERE .*FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	claimed, err := NewGormOutboxRepository(db).MarkProcessing(context.Background(), []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessorConfigFrom(t *testing.T) {
	cfg := ProcessorConfigFrom(config.EventConfig{
		BatchSize:      10,
		PollInterval:   time.Second,
		MaxRetries:     8,
		CleanupEnabled: false,
	})

	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 8, cfg.MaxRetries)
	assert.False(t, cfg.CleanupEnabled)
	assert.Equal(t, 7*24*time.Hour, cfg.CleanupRetention)
}
