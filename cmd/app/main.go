package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docfix/internal/api"
	"docfix/internal/classifier"
	"docfix/internal/config"
	"docfix/internal/notifier"
	"docfix/internal/queue"
	"docfix/internal/redis"
	"docfix/internal/rewriter"
	"docfix/internal/storage"
	"docfix/internal/worker"
)

const memoryQueueSize = 256

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

	publisher, consumer, err := openQueue(cfg.Queue)
	if err != nil {
		log.Fatalf("failed to create queue: %v", err)
	}
	defer publisher.Close()
	defer consumer.Close()

	cl, err := classifier.NewCached(classifier.NewHeuristic(), cfg.Server.CacheSize)
	if err != nil {
		log.Fatalf("failed to create classifier: %v", err)
	}
	rw := rewriter.New(cl, cfg.Rewriter)

	server := api.NewServer(repo, rdb, publisher, rw, cfg.Rewriter)

	processor := worker.NewProcessor(rw, repo, cfg.Rewriter, cfg.Processor)
	c := worker.NewConsumer(consumer, processor, rdb, server)
	if cfg.Notifier.TelegramToken != "" {
		c.WithNotifier(notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs))
	}
	wt := worker.NewWatcher(rdb, publisher, cfg.Watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := c.Start(ctx); err != nil {
			log.Printf("consumer error: %v", err)
		}
	}()

	go wt.Start(ctx)

	go func() {
		log.Printf("server starting on %s", cfg.Server.Port)
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	log.Printf("app started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	cancel()
	server.Shutdown()
}

// openQueue uses Kafka when brokers are configured and an in-process queue
// otherwise.
func openQueue(cfg config.QueueConfig) (queue.Publisher, queue.Consumer, error) {
	if len(cfg.Brokers) == 0 {
		log.Printf("[QUEUE] no brokers configured, jobs stay in process")
		q := queue.NewMemory(memoryQueueSize)
		return q, q, nil
	}

	publisher, err := queue.NewKafka(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}

	consumer, err := queue.NewKafkaConsumer(cfg.Brokers, cfg.GroupID, cfg.Topic)
	if err != nil {
		publisher.Close()
		return nil, nil, err
	}

	return publisher, consumer, nil
}
