package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tdhoang/quotebook/pkg/journal"
)

type BookEventSQLRepo struct {
	db *gorm.DB
}

func NewBookEventSQLRepo(db *gorm.DB) *BookEventSQLRepo {
	return &BookEventSQLRepo{
		db: db,
	}
}

func (s *BookEventSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Create inserts one event; redelivered events are skipped on conflict
// so the NATS consumer can ack at-least-once.
func (r *BookEventSQLRepo) Create(ctx context.Context, record *journal.BookEvent) (*journal.BookEvent, error) {
	return record, r.dbWithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record).Error
}

func (r *BookEventSQLRepo) BulkCreate(ctx context.Context, records []*journal.BookEvent) ([]*journal.BookEvent, error) {
	return records, r.dbWithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(records).Error
}

func (r *BookEventSQLRepo) ListByOrder(ctx context.Context, instrument string, orderID int64) ([]*journal.BookEvent, error) {
	var out []*journal.BookEvent
	err := r.dbWithContext(ctx).
		Where("instrument = ? AND order_id = ?", instrument, orderID).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}
