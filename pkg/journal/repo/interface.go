package repo

import (
	"context"

	"github.com/tdhoang/quotebook/pkg/journal"
)

type IBookEvent interface {
	Create(ctx context.Context, record *journal.BookEvent) (*journal.BookEvent, error)
	BulkCreate(ctx context.Context, records []*journal.BookEvent) ([]*journal.BookEvent, error)
	ListByOrder(ctx context.Context, instrument string, orderID int64) ([]*journal.BookEvent, error)
}
