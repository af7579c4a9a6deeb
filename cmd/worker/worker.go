package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"Attendly/config"
	"Attendly/internal/bootstrap"
	"Attendly/internal/cache"
	"Attendly/internal/mail"
	"Attendly/internal/queue"
	"Attendly/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	cleanup, err := bootstrap.Init(ctx, "worker")
	if err != nil {
		logger.Logger.Fatal("Failed to bootstrap worker", zap.Error(err))
	}
	defer cleanup()

	sender, err := mail.NewSender(&config.Cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize mail sender", zap.Error(err))
	}

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
		zap.String("mail_transport", sender.Transport()),
		zap.Int("max_attempts", config.Cfg.MailMaxAttempts),
	)

	consumer := queue.NewMailConsumer(sender, cache.MessageMarks{}, config.Cfg.MailMaxAttempts)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Logger.Error("Mail consumer stopped with error", zap.Error(err))
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
