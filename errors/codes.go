package errors

// ErrorCode identifies an error category for API responses and logs.
type ErrorCode string

const (
	ErrorCode_INTERNAL          ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT  ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND         ErrorCode = "NOT_FOUND"
	ErrorCode_UNAUTHENTICATED   ErrorCode = "UNAUTHENTICATED"
	ErrorCode_PERMISSION_DENIED ErrorCode = "PERMISSION_DENIED"
	ErrorCode_INVALID_PAYLOAD   ErrorCode = "INVALID_PAYLOAD"

	// Routing / configuration
	ErrorCode_CONFIGURATION          ErrorCode = "CONFIGURATION"
	ErrorCode_UNKNOWN_CATEGORY       ErrorCode = "UNKNOWN_MEETING_CATEGORY"
	ErrorCode_PROJECT_NOT_CONFIGURED ErrorCode = "PROJECT_NOT_CONFIGURED"

	// Documents
	ErrorCode_DOCUMENT_INVALID    ErrorCode = "DOCUMENT_INVALID"
	ErrorCode_DOCUMENT_EXTRACTION ErrorCode = "DOCUMENT_EXTRACTION_FAILED"

	// Integrations
	ErrorCode_INTEGRATION_ASANA_FAILED   ErrorCode = "INTEGRATION_ASANA_FAILED"
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = "INTEGRATION_CACHE_FAILED"

	// Database
	ErrorCode_DB_QUERY_FAILED ErrorCode = "DB_QUERY_FAILED"
)

// String returns the code as a plain string
func (c ErrorCode) String() string {
	return string(c)
}
