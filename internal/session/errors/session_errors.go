package sessionerrors

import (
	"net/http"

	"go-attend/internal/shared/apperror"
)

var (
	ErrSessionNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance session not found",
		http.StatusNotFound,
	)

	ErrSessionAlreadyOpen = apperror.New(
		apperror.CodeConflict,
		"An attendance session is already open for this participant",
		http.StatusConflict,
	)

	ErrSessionClosed = apperror.New(
		apperror.CodeInvalidTransition,
		"Attendance session is already closed",
		http.StatusUnprocessableEntity,
	)

	ErrClockInOutsideBoundary = apperror.New(
		apperror.CodeGeofenceRejected,
		"Clock-in requires a position inside the training site boundary",
		http.StatusUnprocessableEntity,
	)

	ErrStaleHeartbeat = apperror.New(
		apperror.CodeConflict,
		"Heartbeat is older than the last applied observation",
		http.StatusConflict,
	)

	ErrLunchAlreadyTaken = apperror.New(
		apperror.CodeInvalidTransition,
		"Only one lunch interval is allowed per session",
		http.StatusUnprocessableEntity,
	)

	ErrLunchNotStarted = apperror.New(
		apperror.CodeInvalidTransition,
		"No lunch interval is open",
		http.StatusUnprocessableEntity,
	)

	ErrLunchWhileOffsite = apperror.New(
		apperror.CodeInvalidTransition,
		"Lunch can only start while clocked in on site",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidSessionID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid session ID",
		http.StatusBadRequest,
	)

	ErrInvalidParticipantID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid participant ID",
		http.StatusBadRequest,
	)

	ErrNotSessionOwner = apperror.New(
		apperror.CodeForbidden,
		"Session belongs to another participant",
		http.StatusForbidden,
	)
)
