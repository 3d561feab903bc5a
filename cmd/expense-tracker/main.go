package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/auth"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
)

func main() {
	cfg, logger := cli.LoadConfig((*config.Config).ValidateServer)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	repo := cli.OpenStore(ctx, logger, cfg.DatabaseURL)

	// Change notifications are optional.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			repo.Close()
			cli.Fatal(logger, "Failed to connect to AMQP broker", err)
		}
		publisher = client
		logger.WithComponent(log.ComponentAMQP).Info("Publishing expense events",
			"exchange", cfg.AMQPExchange,
			"routing_key", cfg.AMQPRoutingKey)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	expenses := services.NewExpenseService(repo, publisher, logger)
	defer func() {
		if err := expenses.Close(); err != nil {
			logger.Error("Failed to release resources", log.FieldError, err)
		}
	}()

	gate := auth.NewGate(cfg.AuthUsername, cfg.AuthPasswordHash,
		auth.NewTokenIssuer([]byte(cfg.AuthSecret)), cfg.SessionTTL)

	srv, err := apphttp.NewServer(cfg, expenses, gate, logger)
	if err != nil {
		expenses.Close()
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense tracker",
			log.FieldOperation, log.OpStartup,
			"addr", srv.Addr,
			"driver", repo.Dialect().Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		expenses.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
