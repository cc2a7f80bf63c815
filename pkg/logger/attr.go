package logger

import (
	"log/slog"
	"time"
)

// Attribute keys shared across packages so log queries stay stable.
const (
	KeyError     = "error"
	KeyUserID    = "user_id"
	KeyProvider  = "provider"
	KeyRequestID = "request_id"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyEvent     = "event"
	KeyBackend   = "backend"
)

// Error records err. A nil error yields an empty Attr, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// UserID records a user directory id. Ids start at 1, so zero is omitted.
func UserID(id int64) slog.Attr {
	if id == 0 {
		return slog.Attr{}
	}
	return slog.Int64(KeyUserID, id)
}

// Provider records an identity provider name.
func Provider(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String(KeyProvider, name)
}

// RequestID records the request correlation id.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String(KeyRequestID, id)
}

// Duration records elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

func Event(name string) slog.Attr { return slog.String(KeyEvent, name) }

func Backend(name string) slog.Attr { return slog.String(KeyBackend, name) }
