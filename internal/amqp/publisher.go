package amqp

import (
	"context"
	"time"

	"github.com/finboard/report_engine/internal/core/domain"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
)

// Publisher adapts the client onto the queue port the HTTP layer consumes.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

var _ portssvc.RefreshQueue = (*Publisher)(nil)

func (p *Publisher) EnqueueRefresh(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType, interactive bool) error {
	priority := PriorityScheduled
	if interactive {
		priority = PriorityInteractive
	}
	return p.client.PublishRefresh(ctx, NewRefreshMessage(reportID, start, end, periodType), priority)
}
