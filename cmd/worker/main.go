package main

import (
	"context"
	"flag"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/tdhoang/quotebook/config"
	postgres_wrapper "github.com/tdhoang/quotebook/pkg/infra/postgres"
	"github.com/tdhoang/quotebook/pkg/journal"
	"github.com/tdhoang/quotebook/pkg/journal/repo"
	"github.com/tdhoang/quotebook/pkg/journal/worker"
	"github.com/tdhoang/quotebook/pkg/logging"
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

	ctx := context.Background()

	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		zap.S().Fatalf("connect nats: %v", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		zap.S().Fatalf("jetstream: %v", err)
	}
	_, err = js.AddStream(journal.StreamConfig(cfg.Nats.Stream, cfg.Nats.Subject))
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		zap.S().Fatalf("add stream: %v", err)
	}

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.JournalDB)
	sqlRepo := repo.NewRepo(db)

	w := worker.NewWorker(sqlRepo)
	go func() {
		if err := w.StartConsumer(ctx, js, cfg.Nats.Subject, cfg.Nats.Durable); err != nil {
			zap.S().Fatalf("consumer: %v", err)
		}
	}()

	select {}
}
