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
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldAccountID   = "account_id"
	FieldCardID      = "card_id"
	FieldOwnerCardID = "owner_card_id"
	FieldSourceKey   = "source_key"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldYear        = "year"
	FieldMonth       = "month"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentAuth     = "auth"
	ComponentBilling  = "billing"
	ComponentStorage  = "storage"
	ComponentEvents   = "events"
	ComponentRates    = "rates"
	ComponentPlanner  = "planner"
	ComponentEntries  = "entries"
	ComponentVehicles = "vehicles"
	ComponentTrips    = "trips"
)
