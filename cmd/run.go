package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"bidmaster/config"
	"bidmaster/database"
	"bidmaster/events"
	"bidmaster/jobs"
	"bidmaster/repository"
	"bidmaster/server"
	"bidmaster/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting bidmaster...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	userService := service.NewUserService(uowFactory, cfg.SignupCredit)
	auctionService := service.NewAuctionService(uowFactory)
	biddingService := service.NewBiddingService(uowFactory, cfg.BidMaxRetries)
	fundingService := service.NewFundingService(uowFactory)
	closingService := service.NewClosingService(uowFactory)

	scheduler := jobs.NewScheduler(closingService, cfg.SweepInterval)
	if err := scheduler.Start(ctx); err != nil {
		db.Close()
		return err
	}

	handler := server.NewHandler(userService, auctionService, biddingService, fundingService)
	router := server.SetupRouter(handler)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":        cfg.HTTPAddr,
			"environment": cfg.Environment,
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		scheduler.Stop()
		db.Close()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown incomplete")
	}

	scheduler.Stop()

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
