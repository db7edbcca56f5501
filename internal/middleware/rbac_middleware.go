package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-attend/internal/domain"
)

type ContextKey string

const (
	ContextParticipantID ContextKey = "participant_id"
	ContextProgramID     ContextKey = "program_id"
)

// RBACService is a local interface; any package exposing an Enforce method
// over domain.EnforceRequest satisfies it.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		participantID, ok1 := c.Get(string(ContextParticipantID))
		programID, ok2 := c.Get(string(ContextProgramID))

		if !ok1 || !ok2 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			c.Abort()
			return
		}

		req := domain.EnforceRequest{
			ParticipantID: participantID.(string),
			ProgramID:     programID.(string),
			Resource:      resource,
			Action:        action,
		}

		allowed, err := service.Enforce(req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "forbidden",
				"message":  "You do not have permission to access this resource",
				"required": resource + ":" + action,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
