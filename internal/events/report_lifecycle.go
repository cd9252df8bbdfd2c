package events

import "time"

const ReportLifecycleTopic = "research.report.lifecycle.v1"

type ReportUploadedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	ReportID   string    `json:"report_id"`
	CompanyID  string    `json:"company_id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ReportDeletedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	ReportID   string    `json:"report_id"`
	CompanyID  string    `json:"company_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReportBlobOrphanedEvent signals that a report row was deleted but its
// blob could not be removed; a reconciliation consumer picks these up.
type ReportBlobOrphanedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	ReportID   string    `json:"report_id"`
	CompanyID  string    `json:"company_id"`
	FilePath   string    `json:"file_path"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
