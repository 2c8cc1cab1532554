package journal

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// StreamConfig is the JetStream stream definition for the journal.
// The publisher and the worker both ensure the stream with this exact
// config, so whichever side starts second finds an identical stream
// instead of a config mismatch.
func StreamConfig(stream, subject string) *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:     stream,
		Subjects: []string{subject},
	}
}

// NatsPublisher pushes BookEvents onto a JetStream stream for the
// persistence worker to drain.
type NatsPublisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
}

func NewNatsPublisher(url, stream, subject string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("journal: connect nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("journal: jetstream: %w", err)
	}

	if _, err := js.AddStream(StreamConfig(stream, subject)); err != nil && err != nats.ErrStreamNameAlreadyInUse {
		nc.Close()
		return nil, fmt.Errorf("journal: ensure stream: %w", err)
	}

	return &NatsPublisher{nc: nc, js: js, subject: subject}, nil
}

func (p *NatsPublisher) Publish(ev *BookEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject, body)
	return err
}

func (p *NatsPublisher) Close() {
	p.nc.Close()
}
