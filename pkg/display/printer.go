// Package display renders book contents for the console. The core never
// prints; whether and how much to show is this package's configuration.
package display

import (
	"fmt"
	"io"

	"github.com/tdhoang/quotebook/pkg/book"
	"github.com/tdhoang/quotebook/pkg/feed"
)

type Config struct {
	// Verbose prints every resting order; otherwise only the best
	// quotes are shown.
	Verbose bool
}

// Printer writes human-readable book snapshots.
type Printer struct {
	w     io.Writer
	ticks *feed.TickConverter
	cfg   Config
}

// New creates a Printer. ticks may be nil, in which case raw tick
// integers are printed instead of decimal prices.
func New(w io.Writer, ticks *feed.TickConverter, cfg Config) *Printer {
	return &Printer{w: w, ticks: ticks, cfg: cfg}
}

func (p *Printer) price(ticks int64) string {
	if p.ticks == nil {
		return fmt.Sprintf("%d", ticks)
	}
	return p.ticks.Price(ticks).String()
}

// PrintBook writes one instrument's book, asks first, best prices at
// the bottom of each side so the spread sits in the middle.
func (p *Printer) PrintBook(instrument string, b *book.Book) {
	fmt.Fprintf(p.w, "Book %s:\n", instrument)
	p.printSide("Asks", b.SideSnapshot(book.Ask), b.BestAsk)
	p.printSide("Bids", b.SideSnapshot(book.Bid), b.BestBid)
}

func (p *Printer) printSide(label string, orders []book.Order, best func() (book.Quote, bool)) {
	fmt.Fprintf(p.w, "  %s:\n", label)
	if len(orders) == 0 {
		fmt.Fprintln(p.w, "    <none>")
		return
	}
	if p.cfg.Verbose {
		for i, o := range orders {
			fmt.Fprintf(p.w, "    [%03d] id=%d price=%s qty=%d\n", i, o.ID, p.price(o.Price), o.Qty)
		}
	}
	if q, ok := best(); ok {
		fmt.Fprintf(p.w, "    best %s x %d\n", p.price(q.Price), q.Qty)
	}
}
