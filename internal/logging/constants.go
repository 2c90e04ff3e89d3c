package logging

// Standardized field names for structured logging.
// These constants keep log output consistent across the scanner so that
// statement, rule and category events can be filtered by key.
const (
	FieldFile          = "file_path"
	FieldFileName      = "file_name"
	FieldMIMEType      = "mime_type"
	FieldTransactionID = "transaction_id"
	FieldRuleID        = "rule_id"
	FieldKeyword       = "keyword"
	FieldCategory      = "category"
	FieldColor         = "color"
	FieldStrategy      = "strategy"
	FieldState         = "state"
	FieldReason        = "reason"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldModel         = "model"
	FieldDelimiter     = "delimiter"
	FieldInputFile     = "input_file"
	FieldOutputFile    = "output_file"
	FieldComponent     = "component"
)
