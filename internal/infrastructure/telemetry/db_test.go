package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type flour struct {
	ID   uint
	Name string
}

func TestDBInstrumentation_RecordsQueries(t *testing.T) {
	reader, mp := newTestMeter(t)
	inst, err := NewDBInstrumentation(DBConfig{SlowQueryThresh: time.Hour, DBSystem: "sqlite"}, mp.Meter("db"), zaptest.NewLogger(t))
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.Use(inst))
	require.NoError(t, db.AutoMigrate(&flour{}))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&flour{Name: "Harina 000"}).Error)
	var got flour
	require.NoError(t, db.WithContext(ctx).First(&got).Error)
	require.NoError(t, db.WithContext(ctx).Model(&got).Update("name", "Harina integral").Error)
	var n int64
	require.NoError(t, db.WithContext(ctx).Raw("SELECT count(*) FROM flours").Scan(&n).Error)

	data := collect(t, reader)
	total := data["db_query_total"]
	assert.EqualValues(t, 1, sumWhere(t, total, AttrDBOperation.String("INSERT"), AttrDBTable.String("flours")))
	assert.EqualValues(t, 1, sumWhere(t, total, AttrDBOperation.String("UPDATE")))
	assert.GreaterOrEqual(t, sumWhere(t, total, AttrDBOperation.String("SELECT")), int64(2))

	hist, ok := data["db_query_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.NotEmpty(t, hist.DataPoints)
	if slow, ok := data["db_slow_query_total"]; ok {
		assert.Zero(t, sumWhere(t, slow))
	}
	assert.Contains(t, data, "db_pool_connections")
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "SELECT", operationOf("  select * from stock_items"))
	assert.Equal(t, "UPDATE", operationOf("UPDATE orders SET inventory_deducted = true"))
	assert.Equal(t, "OTHER", operationOf("PRAGMA foreign_keys = ON"))
}

func TestDBInstrumentation_NoMeter(t *testing.T) {
	inst, err := NewDBInstrumentation(DBConfig{}, nil, nil)
	require.NoError(t, err)
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.Use(inst))
	require.NoError(t, db.AutoMigrate(&flour{}))
	assert.NoError(t, db.Create(&flour{Name: "Azucar"}).Error)
}
