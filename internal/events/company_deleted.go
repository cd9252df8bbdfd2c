package events

import "time"

const CompanyLifecycleTopic = "research.company.lifecycle.v1"

type CompanyDeletedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	CompanyID   string    `json:"company_id"`
	ReportCount int       `json:"report_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}
