package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/georadical/layer-flow/modules/account"
	"github.com/georadical/layer-flow/pkg/httpserver"
)

func newRouter(cfg AppConfig, accounts *account.Handler, log *slog.Logger, checks ...httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(
		httpserver.RequestID,
		middleware.RealIP,
		httpserver.AccessLog(log),
		middleware.Recoverer,
	)

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		r.Get("/health", httpserver.LivenessHandler(cfg.ServiceName))
		r.Get("/health/ready", httpserver.ReadinessHandler(log, checks...))
		r.Mount("/", accounts.Router())
	})

	return r
}
