package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"docfix/internal/api"
	"docfix/internal/classifier"
	"docfix/internal/config"
	"docfix/internal/queue"
	"docfix/internal/redis"
	"docfix/internal/rewriter"
	"docfix/internal/storage"
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

	publisher, err := queue.NewKafka(cfg.Queue.Brokers, cfg.Queue.Topic)
	if err != nil {
		log.Fatalf("failed to create queue: %v", err)
	}
	defer publisher.Close()

	cl, err := classifier.NewCached(classifier.NewHeuristic(), cfg.Server.CacheSize)
	if err != nil {
		log.Fatalf("failed to create classifier: %v", err)
	}

	server := api.NewServer(repo, rdb, publisher, rewriter.New(cl, cfg.Rewriter), cfg.Rewriter)

	go func() {
		log.Printf("server starting on %s", cfg.Server.Port)
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	server.Shutdown()
}
