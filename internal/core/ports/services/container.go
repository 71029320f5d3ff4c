package services

import (
	"context"
	"time"

	"github.com/finboard/report_engine/internal/core/domain"
)

// RefreshQueue enqueues refresh requests for the worker fleet. Interactive
// requests are prioritised ahead of scheduled sweeps.
type RefreshQueue interface {
	EnqueueRefresh(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType, interactive bool) error
}

// ServiceContainer bundles the services the HTTP layer consumes.
type ServiceContainer struct {
	Query        ReportQuerySvc
	RefreshQueue RefreshQueue
}
