package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/crewpay/crewpay/internal/audit"
	auditStore "github.com/crewpay/crewpay/internal/audit/store"
	"github.com/crewpay/crewpay/internal/config"
	"github.com/crewpay/crewpay/internal/database"
	employeeStore "github.com/crewpay/crewpay/internal/employee/store"
	crewpayHttp "github.com/crewpay/crewpay/internal/http"
	auditHandler "github.com/crewpay/crewpay/internal/http/audit"
	ledgerHandler "github.com/crewpay/crewpay/internal/http/ledger"
	payrollHandler "github.com/crewpay/crewpay/internal/http/payroll"
	"github.com/crewpay/crewpay/internal/ledger"
	ledgerStore "github.com/crewpay/crewpay/internal/ledger/store"
	"github.com/crewpay/crewpay/internal/payroll"
	payrollStore "github.com/crewpay/crewpay/internal/payroll/store"
	"github.com/crewpay/crewpay/internal/scope"
	scopeStore "github.com/crewpay/crewpay/internal/scope/store"
	vendorStore "github.com/crewpay/crewpay/internal/vendorpkg/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		employees = employeeStore.New(db)
		vendors   = vendorStore.New(db)
		scopes    = scope.NewResolver(scopeStore.New(db))

		auditService   = audit.NewService(auditStore.New(db), scopes)
		ledgerService  = ledger.NewService(ledgerStore.New(db), scopes, employees, vendors, auditService)
		payrollService = payroll.NewService(payrollStore.New(db), scopes, employees)
	)

	var (
		ledgerH  = ledgerHandler.NewHandler(ledgerService)
		payrollH = payrollHandler.NewHandler(payrollService)
		auditH   = auditHandler.NewHandler(auditService)
	)

	router := crewpayHttp.New(crewpayHttp.Config{
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, ledgerH, payrollH, auditH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}

	// Let in-flight audit writes finish before the process exits.
	ledgerService.Wait()
}
