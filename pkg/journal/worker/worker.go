package worker

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/tdhoang/quotebook/pkg/journal"
	"github.com/tdhoang/quotebook/pkg/journal/repo"
)

// Worker drains the journal stream into the database. At-least-once
// delivery; the SQL layer ignores duplicate event ids.
type Worker struct {
	bookEvent repo.IBookEvent
	log       *zap.SugaredLogger
}

func NewWorker(repo repo.IRepo) *Worker {
	return &Worker{
		bookEvent: repo.BookEvent(),
		log:       zap.S().Named("journal-worker"),
	}
}

func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := cons.Fetch(10, nats.Context(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nats.ErrTimeout {
				w.log.Warnf("fetch error: %v", err)
			}
			continue
		}

		for _, msg := range msgs {
			var ev journal.BookEvent
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				w.log.Warnf("unmarshal err: %v", err)
				_ = msg.Ack()
				continue
			}
			if err := w.handleEvent(&ev); err != nil {
				w.log.Warnf("handleEvent err: %v", err)
				continue
			}
			_ = msg.Ack()
		}
	}
}

func (w *Worker) handleEvent(ev *journal.BookEvent) error {
	_, err := w.bookEvent.Create(context.Background(), ev)
	return err
}
