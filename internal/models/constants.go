package models

// AppState is the process-wide state of the scanner session.
type AppState string

const (
	StateIdle       AppState = "IDLE"
	StateProcessing AppState = "PROCESSING"
	StateAnalyzed   AppState = "ANALYZED"
	StateError      AppState = "ERROR"
)

// UnknownPeriod is the period bound shown until an extraction reports one.
const UnknownPeriod = "Unknown"

// MIMETypePDF is the only document type accepted for extraction.
const MIMETypePDF = "application/pdf"

// Period is the statement's covered date range, as printed on the statement.
type Period struct {
	Start string `json:"start" yaml:"start" xml:"start"`
	End   string `json:"end" yaml:"end" xml:"end"`
}

// NewPeriod builds a Period, substituting UnknownPeriod for empty bounds.
func NewPeriod(start, end string) Period {
	if start == "" {
		start = UnknownPeriod
	}
	if end == "" {
		end = UnknownPeriod
	}
	return Period{Start: start, End: end}
}

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
