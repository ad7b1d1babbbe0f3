package models

import "time"

// ReportFormat enumerates supported export formats for the course report.
type ReportFormat string

const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
)

// ReportStatus captures the background job lifecycle.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob tracks one course progress report generation.
type ReportJob struct {
	ID           string       `json:"id"`
	Format       ReportFormat `json:"format"`
	Status       ReportStatus `json:"status"`
	ResultURL    *string      `json:"result_url,omitempty"`
	RequestedBy  string       `json:"requested_by"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}
