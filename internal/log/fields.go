package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldExpenseID   = "expense_id"
	FieldAmountPaise = "amount_paise"
	FieldCategory    = "category"
	FieldPaidBy      = "paid_by"
	FieldSheetRef    = "sheet_ref"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentWorker  = "worker"
	ComponentStorage = "storage"
)
