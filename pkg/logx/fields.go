package logx

const (
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldDurationMs      = "duration-ms"
	FieldError           = "error"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldStack           = "stack"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
	FieldOperator        = "operator"

	FieldDealID         = "deal-id"
	FieldListingID      = "listing-id"
	FieldCardName       = "card-name"
	FieldSetName        = "set-name"
	FieldRecommendation = "recommendation"
	FieldStatus         = "status"
	FieldReason         = "reason"
	FieldAmount         = "amount"
	FieldROI            = "roi"
	FieldTaskType       = "task-type"
)
