package handlers

import (
	"context"
	"log/slog"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// logError logs a handler failure with the request ID of ctx.
func logError(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if id := chimw.GetReqID(ctx); id != "" {
		args = append(args, "request_id", id)
	}
	slog.Error(msg, args...)
}
