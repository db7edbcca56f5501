package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"

	// Attendance domain (4xx)
	CodeGateDenied          = "GATE_DENIED"
	CodeGeofenceRejected    = "GEOFENCE_REJECTED"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodePositionUnavailable = "POSITION_UNAVAILABLE"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
