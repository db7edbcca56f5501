package siteerrors

import (
	"net/http"

	"go-attend/internal/shared/apperror"
)

var (
	ErrSiteNotFound = apperror.New(
		apperror.CodeNotFound,
		"Training site not found",
		http.StatusNotFound,
	)

	ErrSiteInactive = apperror.New(
		apperror.CodeInvalidState,
		"Training site is not active",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidSiteID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid site ID",
		http.StatusBadRequest,
	)

	ErrInvalidProgramID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid program ID",
		http.StatusBadRequest,
	)

	ErrInvalidPolygon = apperror.New(
		apperror.CodeInvalidInput,
		"Polygon must have at least three vertices",
		http.StatusBadRequest,
	)
)
