package constants

// Error codes are five digits: the leading digits follow the HTTP status
// family they map to (40xxx -> 400, 52xxx -> 502 and so on).
const (
	CodeSuccess = 0

	// 400 Bad Request
	CodeBadRequest       = 40000
	CodeInvalidJSON      = 40001
	CodeValidationFailed = 40002
	CodeMissingParameter = 40003
	CodeInvalidParameter = 40004 // includes malformed pagination cursors

	// 401 Unauthorized
	CodeUnauthorized    = 41000
	CodeMissingAuth     = 41001
	CodeInvalidToken    = 41002
	CodeExpiredToken    = 41003
	CodeInvalidClientID = 41006
	CodeInactiveClient  = 41007

	// 403 Forbidden
	CodeForbidden         = 43000
	CodeInsufficientPerms = 43001

	// 404 Not Found
	CodeNotFound         = 44000
	CodeEndpointNotFound = 44002

	// 409 Conflict
	CodeConflict     = 49000
	CodeDuplicateJob = 49002

	// 429 Too Many Requests
	CodeRateLimit = 42900

	// 500 Internal Server Error
	CodeInternalError      = 50000
	CodeInfluxDBError      = 50002
	CodeRedisError         = 50003
	CodeJobProcessingError = 50004
	CodeConfigurationError = 50005

	// 502 Bad Gateway
	CodeBadGateway       = 52000 // Loki unreachable
	CodeUpstreamError    = 52001 // Loki answered with an error
	CodeExternalAPIError = 52002 // Loki answered with an unreadable body

	// 503 Service Unavailable
	CodeServiceUnavailable = 53000
	CodeRedisUnavailable   = 53002

	// 504 Gateway Timeout
	CodeGatewayTimeout  = 54000
	CodeUpstreamTimeout = 54001
)

// ErrorMessages holds the default message of every code
var ErrorMessages = map[int]string{
	CodeSuccess: "Success",

	CodeBadRequest:       "Bad request",
	CodeInvalidJSON:      "Invalid JSON payload",
	CodeValidationFailed: "Validation failed",
	CodeMissingParameter: "Required parameter missing",
	CodeInvalidParameter: "Invalid parameter value",

	CodeUnauthorized:    "Unauthorized",
	CodeMissingAuth:     "Authentication required: provide a Bearer token",
	CodeInvalidToken:    "Invalid JWT token",
	CodeExpiredToken:    "Token has expired",
	CodeInvalidClientID: "Invalid client ID",
	CodeInactiveClient:  "Client is inactive",

	CodeForbidden:         "Forbidden",
	CodeInsufficientPerms: "Insufficient permissions",

	CodeNotFound:         "Not found",
	CodeEndpointNotFound: "Endpoint not found",

	CodeConflict:     "Conflict",
	CodeDuplicateJob: "Duplicate job - already in queue",

	CodeRateLimit: "Rate limit exceeded",

	CodeInternalError:      "Internal server error",
	CodeInfluxDBError:      "InfluxDB error",
	CodeRedisError:         "Redis error",
	CodeJobProcessingError: "Job processing error",
	CodeConfigurationError: "Configuration error",

	CodeBadGateway:       "Loki is unreachable",
	CodeUpstreamError:    "Loki returned an error",
	CodeExternalAPIError: "Loki returned an unreadable response",

	CodeServiceUnavailable: "Service unavailable",
	CodeRedisUnavailable:   "Redis unavailable",

	CodeGatewayTimeout:  "Gateway timeout",
	CodeUpstreamTimeout: "Upstream timeout",
}

// GetErrorMessage returns the standard message for an error code
func GetErrorMessage(code int) string {
	if msg, exists := ErrorMessages[code]; exists {
		return msg
	}
	return "Unknown error"
}

// GetHTTPStatusFromCode returns the HTTP status an error code is sent with
func GetHTTPStatusFromCode(code int) int {
	switch {
	case code == 0:
		return 200
	case code >= 40000 && code < 41000:
		return 400
	case code >= 41000 && code < 42000:
		return 401
	case code >= 42900 && code < 43000:
		return 429
	case code >= 42000 && code < 42900:
		return 422
	case code >= 43000 && code < 44000:
		return 403
	case code >= 44000 && code < 45000:
		return 404
	case code >= 49000 && code < 50000:
		return 409
	case code >= 50000 && code < 51000:
		return 500
	case code >= 52000 && code < 53000:
		return 502
	case code >= 53000 && code < 54000:
		return 503
	case code >= 54000 && code < 55000:
		return 504
	default:
		return 500
	}
}
