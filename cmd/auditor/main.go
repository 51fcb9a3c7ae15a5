package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"ebridge-portal/internal/config"
	"ebridge-portal/internal/infrastructure/activity"
	"ebridge-portal/internal/infrastructure/broker"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		logger.Fatal("DATABASE_DSN is required for the auditor")
	}

	activityRepo, err := activity.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to init activity repo: %v", err)
	}
	defer activityRepo.Close()

	consumer, err := broker.NewConsumer(cfg.RabbitMQ, activityRepo, logger)
	if err != nil {
		logger.Fatalf("failed to init consumer: %v", err)
	}
	if err := consumer.Start(ctx); err != nil {
		logger.Fatalf("failed to start consumer: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		case amqpErr, ok := <-consumer.Done():
			if ok && amqpErr != nil {
				return fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
			}
			return errors.New("rabbitmq connection closed")
		}
	})

	logger.WithFields(logrus.Fields{
		"exchange":      cfg.RabbitMQ.ActivityExchange,
		"queue":         cfg.RabbitMQ.Queue,
		"batch_size":    cfg.RabbitMQ.BatchSize,
		"batch_timeout": cfg.RabbitMQ.BatchTimeout.String(),
	}).Info("auditor started")

	waitErr := g.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := consumer.Close(shutdownCtx); err != nil {
		logger.Errorf("consumer shutdown error: %v", err)
	}

	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		logger.Fatalf("auditor stopped with error: %v", waitErr)
	}
	logger.Info("auditor stopped")
}
