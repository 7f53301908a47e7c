package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/patient-payments/internal/bootstrap"
	"github.com/GregMSThompson/patient-payments/internal/config"
	"github.com/GregMSThompson/patient-payments/internal/handlers"
	"github.com/GregMSThompson/patient-payments/internal/metrics"
	"github.com/GregMSThompson/patient-payments/internal/middleware"
	"github.com/GregMSThompson/patient-payments/internal/response"
	"github.com/GregMSThompson/patient-payments/internal/router"
	"github.com/GregMSThompson/patient-payments/internal/services"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	m := metrics.New()

	// services
	userv := services.NewUserService(bs.Stores.Users)
	inserv := services.NewInsuranceService(bs.Stores.Insurance, m)
	recserv := services.NewReconciliationService(bs.Stores.Insurance, bs.Stores.Venmo, bs.Stores.Settings)
	vserv := services.NewVenmoService(bs.Stores.Venmo, recserv, m)
	setserv := services.NewSettingsService(bs.Stores.Settings)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Metrics = m
	deps.UserSvc = userv
	deps.InsuranceSvc = inserv
	deps.VenmoSvc = vserv
	deps.ReconciliationSvc = recserv
	deps.SettingsSvc = setserv

	// router
	r := router.NewRouter(deps, middleware.NewMiddleware(bs.Verifier, rh))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		bs.Log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitOnError("server start failed", err, bs.Log)
		}
	}()

	// Cloud Run sends SIGTERM before stopping the instance
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	exitOnError("server shutdown failed", err, bs.Log)
}
