package response

import "github.com/gin-gonic/gin"

// RespondJSON writes the standard envelope. Gateway-facing handlers rely on
// the HTTP status code alone for retry decisions; the body is for operators
// and logs.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
