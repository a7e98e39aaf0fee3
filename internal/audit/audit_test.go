package audit

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/internal/metrics"
	"github.com/payfisc/payfisc-admin/internal/models"
)

func newStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.AuditLog{}))
	return NewStore(conn), conn
}

func TestRecordAndList(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, e := range []Entry{
		{OperatorID: 1, Operator: "a@x", Resource: "plaques", RecordID: 5, Action: "toggle"},
		{OperatorID: 2, Operator: "b@x", Resource: "energies", RecordID: 42, Action: "create", RequestID: "r-2"},
		{OperatorID: 1, Operator: "a@x", Resource: "plaques", RecordID: 6, Action: "delete"},
	} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		require.NoError(t, s.Record(ctx, e))
	}

	rows, total, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 3)
	assert.Equal(t, "delete", rows[0].Action, "newest first")

	rows, total, err = s.List(ctx, Filter{Resource: "plaques", Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].RecordID)

	rows, _, err = s.List(ctx, Filter{OperatorID: 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r-2", rows[0].RequestID)
}

func TestPurge(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return now.Add(-100 * 24 * time.Hour) }
	require.NoError(t, s.Record(ctx, Entry{Resource: "usages", Action: "update"}))
	s.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, s.Record(ctx, Entry{Resource: "usages", Action: "update"}))

	s.now = func() time.Time { return now }
	n, err := s.Purge(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, total, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestNoStore(t *testing.T) {
	var s *Store
	assert.ErrorIs(t, s.Record(context.Background(), Entry{}), ErrNoStore)
	_, _, err := NewStore(nil).List(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestRetentionRun(t *testing.T) {
	s, _ := newStore(t)
	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	require.NoError(t, s.Record(context.Background(), Entry{Resource: "couleurs", Action: "delete"}))
	s.now = time.Now

	m := metrics.NewMetrics(prometheus.NewRegistry())
	r := NewRetention(s, 24*time.Hour, zap.NewNop(), m)
	r.run()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditPurged))

	assert.Error(t, r.Start("not a schedule"))
	require.NoError(t, r.Start("@daily"))
	r.Stop()
}
