// Package quotestream publishes best-quote changes to a Redis pub/sub
// channel for downstream consumers (display walls, feeds, alerting).
package quotestream

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tdhoang/quotebook/pkg/book"
	"github.com/tdhoang/quotebook/pkg/feed"
)

const defaultBuffer = 4096

// Update is the published JSON payload. Empty marks a side with no
// resting orders; Price/Qty are then omitted.
type Update struct {
	Instrument string `json:"instrument"`
	Side       string `json:"side"`
	Price      string `json:"price,omitempty"`
	Qty        int64  `json:"qty,omitempty"`
	Empty      bool   `json:"empty,omitempty"`
	At         int64  `json:"at"`
}

type Publisher struct {
	client  *redis.Client
	channel string
	ticks   *feed.TickConverter
	updates chan book.QuoteUpdate
	log     *zap.Logger
}

func NewPublisher(client *redis.Client, channel string, ticks *feed.TickConverter, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		client:  client,
		channel: channel,
		ticks:   ticks,
		updates: make(chan book.QuoteUpdate, defaultBuffer),
		log:     log,
	}
}

// Callback returns a manager callback. It must not block the book, so
// a full buffer drops the update and logs; subscribers treat the stream
// as best-effort and re-poll on gaps.
func (p *Publisher) Callback() func(book.QuoteUpdate) {
	return func(u book.QuoteUpdate) {
		select {
		case p.updates <- u:
		default:
			p.log.Warn("quote buffer full, dropping update",
				zap.String("instrument", u.Instrument))
		}
	}
}

// Run publishes buffered updates until ctx is done. Transient publish
// failures are retried with exponential backoff.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-p.updates:
			if err := p.publish(ctx, u); err != nil {
				p.log.Error("publish quote fail", zap.Error(err))
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, u book.QuoteUpdate) error {
	body, err := json.Marshal(p.payload(u))
	if err != nil {
		return err
	}

	boff := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.Retry(func() error {
		return p.client.Publish(ctx, p.channel, body).Err()
	}, boff)
}

func (p *Publisher) payload(u book.QuoteUpdate) Update {
	out := Update{
		Instrument: u.Instrument,
		Side:       strings.ToLower(u.Side.String()),
		At:         time.Now().UnixNano(),
	}
	if !u.Ok {
		out.Empty = true
		return out
	}
	if p.ticks != nil {
		out.Price = p.ticks.Price(u.Quote.Price).String()
	} else {
		out.Price = strconv.FormatInt(u.Quote.Price, 10)
	}
	out.Qty = u.Quote.Qty
	return out
}
