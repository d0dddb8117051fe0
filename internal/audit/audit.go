// Package audit is the append-only trail for policy-gated actions and
// subscription state transitions.
package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

// Entry is one auditable event.
type Entry struct {
	ActorID     *uuid.UUID
	Action      string
	WarehouseID *uuid.UUID
	IPAddress   *string
}

// Recorder persists audit entries. Failures are logged, never propagated: an
// audit miss must not fail the business operation it describes.
type Recorder struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewRecorder builds an audit recorder bound to the provided DB.
func NewRecorder(db *gorm.DB, logg *logger.Logger) *Recorder {
	return &Recorder{db: db, logg: logg}
}

// Record appends one entry using the recorder's own connection. A nil
// recorder is a no-op so callers never have to branch on wiring.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil {
		return
	}
	r.record(ctx, r.db, entry)
}

// RecordTx appends one entry inside the caller's transaction so the entry
// commits or rolls back with the operation it describes.
func (r *Recorder) RecordTx(ctx context.Context, tx *gorm.DB, entry Entry) {
	if r == nil {
		return
	}
	if tx == nil {
		r.Record(ctx, entry)
		return
	}
	r.record(ctx, tx, entry)
}

func (r *Recorder) record(ctx context.Context, db *gorm.DB, entry Entry) {
	if r == nil || db == nil {
		return
	}
	row := &models.AuditLog{
		ActorID:     entry.ActorID,
		Action:      entry.Action,
		WarehouseID: entry.WarehouseID,
		IPAddress:   entry.IPAddress,
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil && r.logg != nil {
		r.logg.Error(r.logg.WithField(ctx, "action", entry.Action), "writing audit log", err)
	}
}

// List returns recent entries, newest first, optionally scoped to a warehouse.
func (r *Recorder) List(ctx context.Context, warehouseID *uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}
	var entries []models.AuditLog
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
