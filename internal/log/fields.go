package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldEntryID    = "entry_id"
	FieldProjectID  = "project_id"
	FieldClientID   = "client_id"
	FieldInvoiceID  = "invoice_id"
	FieldInvoiceNum = "invoice_number"
	FieldFormat     = "format"
	FieldAmount     = "amount_cents"
	FieldSeconds    = "seconds"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentTimer   = "timer"
	ComponentReport  = "report"
	ComponentInvoice = "invoice"
	ComponentImport  = "import"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpStart    = "start"
	OpStop     = "stop"
	OpImport   = "import"
	OpExport   = "export"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
