package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tdhoang/quotebook/config"
	"github.com/tdhoang/quotebook/pkg/book"
	"github.com/tdhoang/quotebook/pkg/feed"
	fixgateway "github.com/tdhoang/quotebook/pkg/gateway/fix"
	"github.com/tdhoang/quotebook/pkg/journal"
	"github.com/tdhoang/quotebook/pkg/logging"
)

func main() {
	go func() {
		http.ListenAndServe("localhost:6060", nil) // nolint
	}()

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	tickSize := "1"
	capacity := 0
	if cfg.Book != nil {
		if cfg.Book.TickSize != "" {
			tickSize = cfg.Book.TickSize
		}
		capacity = cfg.Book.Capacity
	}
	ticks, err := feed.NewTickConverter(tickSize)
	if err != nil {
		zap.S().Fatalf("tick size %q: %v", tickSize, err)
	}

	mgr := book.NewManager(&book.ManagerConfig{Capacity: capacity})

	// Book events stream to the journal worker over JetStream when NATS
	// is configured; otherwise they stay in the in-process store only.
	var sink fixgateway.EventSink
	if cfg.Nats != nil {
		pub, err := journal.NewNatsPublisher(cfg.Nats.URL, cfg.Nats.Stream, cfg.Nats.Subject)
		if err != nil {
			zap.S().Fatalf("connect nats: %v", err)
		}
		defer pub.Close()
		sink = pub
	}

	gateway := fixgateway.NewGateway(&fixgateway.GatewayConfig{
		ConfigFilepath: cfg.Fix.ConfigFilepath,
	}, mgr, ticks, nil, sink)

	if err := gateway.Start(ctx); err != nil {
		zap.S().Fatalf("start gateway: %v", err)
	}
	zap.S().Info("FIX gateway started")

	<-sigs
	zap.S().Info("shutting down")
	gateway.Stop()
	cancel()
}
