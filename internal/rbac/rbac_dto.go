package rbac

import "go-attend/internal/domain"

// Aliases so the middleware's enforce contract and this package share one
// request shape.
type (
	EnforceRequest  = domain.EnforceRequest
	EnforceResponse = domain.EnforceResponse
)
