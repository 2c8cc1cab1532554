package feed

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tdhoang/quotebook/pkg/book"
)

func newTestReplayer(t *testing.T) (*book.Manager, *Replayer) {
	t.Helper()
	ticks, err := NewTickConverter("0.5")
	if err != nil {
		t.Fatalf("tick converter: %v", err)
	}
	mgr := book.NewManager(nil)
	return mgr, NewReplayer(mgr, ticks, nil)
}

func TestReplayAppliesStream(t *testing.T) {
	mgr, r := newTestReplayer(t)

	stream := strings.Join([]string{
		`{"seq":1,"instrument":"AAA","kind":"add","order_id":1,"side":"ask","price":"2.5","qty":3}`,
		`{"seq":2,"instrument":"AAA","kind":"add","order_id":2,"side":"ask","price":"2.0","qty":1}`,
		`{"seq":3,"instrument":"AAA","kind":"trade","order_id":2,"qty":1}`,
		``,
		`{"seq":4,"instrument":"AAA","kind":"modify","order_id":1,"qty":5}`,
	}, "\n")

	n, err := r.Load(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 4 {
		t.Fatalf("loaded %d events, want 4", n)
	}

	applied, err := r.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if applied != 4 || r.Pending() != 0 {
		t.Fatalf("applied=%d pending=%d", applied, r.Pending())
	}

	// Price 2.5 at tick 0.5 is 5 ticks.
	if q, ok := mgr.BestAsk("AAA"); !ok || q.Price != 5 || q.Qty != 5 {
		t.Fatalf("best ask = %+v/%v, want price=5 qty=5", q, ok)
	}
}

func TestReplayStopsOnViolation(t *testing.T) {
	_, r := newTestReplayer(t)

	stream := strings.Join([]string{
		`{"seq":1,"instrument":"AAA","kind":"add","order_id":1,"side":"bid","price":"1.0","qty":2}`,
		`{"seq":2,"instrument":"AAA","kind":"cancel","order_id":99}`,
		`{"seq":3,"instrument":"AAA","kind":"cancel","order_id":1}`,
	}, "\n")

	if _, err := r.Load(strings.NewReader(stream)); err != nil {
		t.Fatalf("load: %v", err)
	}
	applied, err := r.Run()
	if !errors.Is(err, book.ErrUnknownOrderID) {
		t.Fatalf("got %v, want ErrUnknownOrderID", err)
	}
	if applied != 1 {
		t.Fatalf("applied %d events before stop, want 1", applied)
	}
	// The rest of the stream stays unapplied.
	if r.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", r.Pending())
	}
}

func TestLoadRejectsMalformedEvents(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"bad kind", `{"seq":1,"instrument":"AAA","kind":"replace","order_id":1}`},
		{"bad side", `{"seq":1,"instrument":"AAA","kind":"add","order_id":1,"side":"mid","price":"1","qty":1}`},
		{"no instrument", `{"seq":1,"kind":"cancel","order_id":1}`},
		{"negative order id", `{"seq":1,"instrument":"AAA","kind":"cancel","order_id":-1}`},
		{"negative price", `{"seq":1,"instrument":"AAA","kind":"add","order_id":1,"side":"bid","price":"-1","qty":1}`},
		{"not json", `seq=1`},
	}
	for _, tc := range cases {
		_, r := newTestReplayer(t)
		if _, err := r.Load(strings.NewReader(tc.line)); err == nil {
			t.Errorf("%s: load accepted %q", tc.name, tc.line)
		}
	}
}

func TestLoadRejectsSeqRegression(t *testing.T) {
	_, r := newTestReplayer(t)
	stream := `{"seq":2,"instrument":"AAA","kind":"cancel","order_id":1}` + "\n" +
		`{"seq":2,"instrument":"AAA","kind":"cancel","order_id":2}`
	if _, err := r.Load(strings.NewReader(stream)); err == nil {
		t.Fatal("duplicate seq accepted")
	}
}

func TestTickConverter(t *testing.T) {
	c, err := NewTickConverter("0.25")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ticks, err := c.Ticks(decimal.RequireFromString("1.75"))
	if err != nil || ticks != 7 {
		t.Fatalf("ticks = %d/%v, want 7", ticks, err)
	}
	if _, err := c.Ticks(decimal.RequireFromString("1.30")); err == nil {
		t.Fatal("off-grid price accepted")
	}
	if p := c.Price(7); !p.Equal(decimal.RequireFromString("1.75")) {
		t.Fatalf("price = %s, want 1.75", p)
	}

	if _, err := NewTickConverter("0"); err == nil {
		t.Fatal("zero tick accepted")
	}
	if _, err := NewTickConverter("x"); err == nil {
		t.Fatal("garbage tick accepted")
	}
}
