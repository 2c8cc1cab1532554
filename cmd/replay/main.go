package main

import (
	"context"
	"flag"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/tdhoang/quotebook/config"
	"github.com/tdhoang/quotebook/pkg/book"
	"github.com/tdhoang/quotebook/pkg/display"
	"github.com/tdhoang/quotebook/pkg/feed"
	redis_wrapper "github.com/tdhoang/quotebook/pkg/infra/redis"
	"github.com/tdhoang/quotebook/pkg/logging"
	"github.com/tdhoang/quotebook/pkg/quotestream"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	if _, err := logging.Init(cfg.ServiceName, cfg.Log); err != nil {
		panic(err)
	}

	if flag.NArg() != 1 {
		zap.S().Fatal("usage: replay [-config-file path] <event-file>")
	}
	eventFile := flag.Arg(0)

	var ticks *feed.TickConverter
	if cfg.Book != nil && cfg.Book.TickSize != "" {
		ticks, err = feed.NewTickConverter(cfg.Book.TickSize)
		if err != nil {
			zap.S().Fatalf("tick size %q: %v", cfg.Book.TickSize, err)
		}
	}

	capacity := 0
	if cfg.Book != nil {
		capacity = cfg.Book.Capacity
	}
	mgr := book.NewManager(&book.ManagerConfig{Capacity: capacity})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Publish best-quote changes to redis when configured; the replay
	// itself does not depend on it.
	if cfg.Redis != nil && cfg.QuoteStream != nil {
		client, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Fatalf("init redis: %v", err)
		}
		pub := quotestream.NewPublisher(client, cfg.QuoteStream.Channel, ticks, logging.Component("quotestream"))
		mgr.RegisterQuoteCallback(pub.Callback())
		go pub.Run(ctx)
	}

	f, err := os.Open(eventFile)
	if err != nil {
		zap.S().Fatalf("open %s: %v", eventFile, err)
	}
	defer f.Close()

	rp := feed.NewReplayer(mgr, ticks, logging.Component("replay"))
	loaded, err := rp.Load(f)
	if err != nil {
		zap.S().Fatalf("load %s: %v", eventFile, err)
	}
	applied, err := rp.Run()
	zap.S().Infof("replayed %d/%d events", applied, loaded)
	if err != nil {
		zap.S().Errorf("replay stopped: %v", err)
	}

	if err := mgr.Validate(); err != nil {
		zap.S().Fatalf("book validation failed: %v", err)
	}

	verbose := cfg.Display != nil && cfg.Display.Verbose
	printer := display.New(os.Stdout, ticks, display.Config{Verbose: verbose})
	names := mgr.Instruments()
	sort.Strings(names)
	for _, name := range names {
		mgr.Inspect(name, func(b *book.Book) {
			printer.PrintBook(name, b)
		})
	}
}
