package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-attend/internal/shared/apperror"
	"go-attend/internal/shared/response"
)

// ExtractParticipantID guards routes that must run with a concrete participant
// identity, rejecting requests where the auth layer left no usable id behind.
func ExtractParticipantID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		participantID, exists := ctx.Get("participant_id")
		if !exists {
			response.Error(ctx, http.StatusUnauthorized, apperror.CodeUnauthorized, "Participant is not authenticated", nil)
			ctx.Abort()
			return
		}

		pid, ok := participantID.(string)
		if !ok || pid == "" {
			response.Error(ctx, http.StatusUnauthorized, apperror.CodeUnauthorized, "Participant ID has an invalid format", nil)
			ctx.Abort()
			return
		}

		ctx.Set("participant_id", pid)
		ctx.Next()
	}
}
