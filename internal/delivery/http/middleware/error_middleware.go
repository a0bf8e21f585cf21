package middleware

import (
	"errors"
	"net/http"

	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"
	"keyskeeper-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{
					Kind:    string(appErr.Kind),
					Details: appErr.Details,
					Meta:    metaFor(c, appErr),
				})
				return
			}
			// SECURITY: Never expose internal error details to clients.
			// Log the actual error server-side, send a generic message out.
			logger.Log.Error("unhandled error", "path", c.FullPath(), "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}

// metaFor attaches the caller's landing route to forbidden responses so the
// client can redirect to a dashboard the role is actually allowed to see.
func metaFor(c *gin.Context, appErr *apperror.AppError) interface{} {
	if appErr.Kind != apperror.KindAccessDenied {
		return nil
	}
	roleStr := c.GetString(string(domain.KeyUserRole))
	if roleStr == "" {
		return nil
	}
	return gin.H{"redirect_to": domain.Role(roleStr).LandingRoute()}
}
