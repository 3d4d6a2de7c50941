package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/crewpay/crewpay/internal/auth"
	auditHandler "github.com/crewpay/crewpay/internal/http/audit"
	ledgerHandler "github.com/crewpay/crewpay/internal/http/ledger"
	payrollHandler "github.com/crewpay/crewpay/internal/http/payroll"
)

type Config struct {
	JWTSecret      string
	AllowedOrigins []string
}

func New(
	cfg Config,
	ledgersV1 *ledgerHandler.Handler,
	payrollV1 *payrollHandler.Handler,
	auditV1 *auditHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.JWTSecret))

		r.Route("/ledgers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgersV1.Routes(r)
		})

		r.Route("/payroll", payrollV1.Routes)

		r.Route("/audit", auditV1.Routes)
	})

	return router
}
