package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error shape every route returns.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func RespondError(c *gin.Context, status int, message string, details any) {
	if err, ok := details.(error); ok {
		details = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: message, Details: details})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
