// Package httpserver runs an http.Handler with graceful shutdown and provides
// the small set of HTTP helpers shared by the API surface.
//
// Server binds its listener eagerly so bind errors surface from Run, then
// serves until the context is cancelled, SIGINT/SIGTERM arrives or Shutdown
// is called. Stop hooks run after the listener drains and are the place to
// close database pools and flush trace exporters.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(func() { pool.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler expose JSON health probes.
// RequestID, RequestIDExtractor and AccessLog tie request ids into slog.
package httpserver
