package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

// ErrNoFailedStore is returned by the failed job commands when the Manager
// was built without WithFailedJobStore.
var ErrNoFailedStore = errors.New("queue: no failed job store configured")

// FailedJobRecord is a row in ayoo_failed_jobs. `ayoo queue:failed` lists
// them and `ayoo queue:retry` pushes them back.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null"`
}

func (FailedJobRecord) TableName() string { return "ayoo_failed_jobs" }

func (m *Manager) persistFailed(ctx context.Context, env envelope, lastErr error) {
	job := FailedJob{Type: env.Type, Payload: env.Payload, Err: lastErr, FailedAt: time.Now(), Attempts: m.maxRetry}

	m.mu.Lock()
	m.failed = append(m.failed, job)
	m.mu.Unlock()

	if m.db == nil {
		return
	}
	rec := FailedJobRecord{
		JobType:  job.Type,
		Payload:  string(job.Payload),
		Attempts: job.Attempts,
		FailedAt: job.FailedAt,
	}
	if lastErr != nil {
		rec.Error = lastErr.Error()
	}
	// the worker's ctx may already be cancelled at shutdown
	if err := m.db.WithContext(context.WithoutCancel(ctx)).Create(&rec).Error; err != nil {
		logger.Warn("queue: could not persist failed job", "type", job.Type, "error", err)
	}
}

// ListFailed returns the stored failures, newest first.
func (m *Manager) ListFailed(ctx context.Context) ([]FailedJobRecord, error) {
	if m.db == nil {
		return nil, ErrNoFailedStore
	}
	var out []FailedJobRecord
	err := m.db.WithContext(ctx).Order("failed_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// Retry pushes the stored failure id back onto the driver and deletes its
// row. gorm.ErrRecordNotFound means there is no such failure.
func (m *Manager) Retry(ctx context.Context, id uint) error {
	if m.db == nil {
		return ErrNoFailedStore
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec FailedJobRecord
		if err := tx.First(&rec, id).Error; err != nil {
			return err
		}
		raw, err := json.Marshal(envelope{Type: rec.JobType, Payload: json.RawMessage(rec.Payload)})
		if err != nil {
			return fmt.Errorf("queue: re-encode failed job %d: %w", id, err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return err
		}
		return m.driver.Push(ctx, raw)
	})
}

// Forget deletes the stored failure id without running it.
func (m *Manager) Forget(ctx context.Context, id uint) error {
	if m.db == nil {
		return ErrNoFailedStore
	}
	res := m.db.WithContext(ctx).Delete(&FailedJobRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
