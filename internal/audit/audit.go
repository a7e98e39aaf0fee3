// Package audit keeps the console's journal of mutations sent to the
// backend and purges it on a schedule.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/internal/metrics"
	"github.com/payfisc/payfisc-admin/internal/models"
)

// ErrNoStore is returned when the journal has no database.
var ErrNoStore = errors.New("audit: no store configured")

// Entry describes one mutation to record.
type Entry struct {
	OperatorID uint
	Operator   string
	Resource   string
	RecordID   int
	Action     string
	RequestID  string
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Resource   string
	OperatorID uint
	Page       int
	Limit      int
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record appends an entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return ErrNoStore
	}
	row := models.AuditLog{
		OperatorID: e.OperatorID,
		Operator:   e.Operator,
		Resource:   e.Resource,
		RecordID:   e.RecordID,
		Action:     e.Action,
		RequestID:  e.RequestID,
		CreatedAt:  s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("audit: record: %w", err)
	}
	return nil
}

// List returns one page of entries, newest first, and the total count.
func (s *Store) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, ErrNoStore
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page < 1 {
		f.Page = 1
	}
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Resource != "" {
		q = q.Where("resource = ?", f.Resource)
	}
	if f.OperatorID != 0 {
		q = q.Where("operator_id = ?", f.OperatorID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("audit: count: %w", err)
	}
	rows := []models.AuditLog{}
	if err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset((f.Page - 1) * f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("audit: list: %w", err)
	}
	return rows, total, nil
}

// Purge deletes entries older than retention and returns how many went.
func (s *Store) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrNoStore
	}
	res := s.db.WithContext(ctx).Where("created_at < ?", s.now().Add(-retention)).Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("audit: purge: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Retention runs Purge on a cron schedule.
type Retention struct {
	store     *Store
	retention time.Duration
	log       *zap.Logger
	metrics   *metrics.Metrics
	cron      *cron.Cron
}

func NewRetention(store *Store, retention time.Duration, log *zap.Logger, m *metrics.Metrics) *Retention {
	return &Retention{store: store, retention: retention, log: log, metrics: m, cron: cron.New()}
}

// Start schedules the purge on a cron schedule ("@daily", "0 3 * * *", ...).
func (r *Retention) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return fmt.Errorf("audit: schedule %q: %w", schedule, err)
	}
	r.cron.Start()
	r.log.Info("audit retention scheduled", zap.String("schedule", schedule), zap.Duration("retention", r.retention))
	return nil
}

// Stop waits for a running purge to finish.
func (r *Retention) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Retention) run() {
	n, err := r.store.Purge(context.Background(), r.retention)
	if err != nil {
		r.log.Error("audit purge failed", zap.Error(err))
		return
	}
	if r.metrics != nil {
		r.metrics.AuditPurged.Add(float64(n))
	}
	if n > 0 {
		r.log.Info("audit purge", zap.Int64("deleted", n))
	}
}
