package amqp

import (
	"encoding/json"
	"time"

	"github.com/finboard/report_engine/internal/core/domain"
)

// Priorities for refresh messages. Interactive requests jump ahead of the
// scheduled backfill sweep.
const (
	PriorityScheduled   uint8 = 1
	PriorityInteractive uint8 = 9
)

// RefreshMessage asks the worker to refresh one report period. It carries only
// the snapshot coordinates; the worker loads everything else from the database
// so a stale queue entry can never carry stale inputs.
type RefreshMessage struct {
	ReportID   string            `json:"reportID"`
	StartDate  time.Time         `json:"startDate"`
	EndDate    time.Time         `json:"endDate"`
	PeriodType domain.PeriodType `json:"periodType"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewRefreshMessage creates a refresh request for one report period.
func NewRefreshMessage(reportID string, start, end time.Time, periodType domain.PeriodType) *RefreshMessage {
	return &RefreshMessage{
		ReportID:   reportID,
		StartDate:  start,
		EndDate:    end,
		PeriodType: periodType,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON creates a message from JSON bytes
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
