package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// QueryHook logs failed and slow queries.
type QueryHook struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook creates a query hook. A zero threshold disables slow query logging.
func NewQueryHook(logger *zap.Logger, slowThreshold time.Duration) *QueryHook {
	return &QueryHook{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)

	fields := []zap.Field{
		zap.String("operation", event.Operation()),
		zap.String("query", event.Query),
		zap.Duration("duration", elapsed),
	}

	switch {
	case event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows):
		h.logger.Error("Query failed", append(fields, zap.Error(event.Err))...)
	case h.slowThreshold > 0 && elapsed >= h.slowThreshold:
		h.logger.Warn("Slow query", fields...)
	default:
		h.logger.Debug("Query executed", fields...)
	}
}
