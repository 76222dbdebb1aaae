package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docfix/internal/classifier"
	"docfix/internal/config"
	"docfix/internal/notifier"
	"docfix/internal/queue"
	"docfix/internal/redis"
	"docfix/internal/rewriter"
	"docfix/internal/storage"
	"docfix/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	repo, err := storage.Open(cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("failed to connect to storage: %v", err)
	}
	defer repo.Close()

	rdb, err := redis.New(cfg.Redis.Addr)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	consumer, err := queue.NewKafkaConsumer(cfg.Queue.Brokers, cfg.Queue.GroupID, cfg.Queue.Topic)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	cl, err := classifier.NewCached(classifier.NewHeuristic(), cfg.Server.CacheSize)
	if err != nil {
		log.Fatalf("failed to create classifier: %v", err)
	}

	processor := worker.NewProcessor(rewriter.New(cl, cfg.Rewriter), repo, cfg.Rewriter, cfg.Processor)
	w := worker.NewConsumer(consumer, processor, rdb, nil)
	if cfg.Notifier.TelegramToken != "" {
		w.WithNotifier(notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Printf("consumer error: %v", err)
		}
	}()

	log.Printf("consumer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	cancel()
}
