// Package logger builds the service's structured slog loggers.
//
// New returns a *slog.Logger that copies request-scoped values (the request
// id, for example) from the context into every record logged with a
// *Context method.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "layer-flow"),
//	    logger.WithConfig(cfg.Log),
//	    logger.WithContextExtractors(httpserver.RequestIDExtractor),
//	)
//	log.InfoContext(ctx, "user signed up", logger.UserID(u.ID), logger.Provider("local"))
//
// Attribute helpers in attr.go keep key names consistent. Error and UserID
// return an empty Attr for nil input so they can be passed unconditionally.
//
// Components that accept a logger default to Discard.
package logger
