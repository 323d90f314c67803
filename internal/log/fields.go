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

	FieldUserID     = "user_id"
	FieldReportID   = "report_id"
	FieldReportType = "report_type"
	FieldBudgetID   = "budget_id"
	FieldGoalID     = "goal_id"
	FieldPeriod     = "period"
	FieldRecords    = "records"
	FieldCategoryID = "category_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAnalytics = "analytics"
	ComponentDashboard = "dashboard"
	ComponentInsights  = "insights"
	ComponentHealth    = "health"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExport    = "export"
	ComponentCache     = "cache"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpGenerate  = "generate"
	OpCompose   = "compose"
	OpScore     = "score"
	OpRecompute = "recompute"
	OpPersist   = "persist"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpExport    = "export"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
