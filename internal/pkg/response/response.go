package response

import "github.com/gin-gonic/gin"

// Success writes {ok:true, ...data}.
func Success(c *gin.Context, statusCode int, data gin.H) {
	body := gin.H{"ok": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"ok":      false,
		"message": message,
	})
}

// FieldErrors writes the per-field rejection map.
func FieldErrors(c *gin.Context, statusCode int, errors any) {
	c.JSON(statusCode, gin.H{
		"ok":     false,
		"errors": errors,
	})
}

// ErrorWithDetails attaches the underlying error string for diagnostics.
func ErrorWithDetails(c *gin.Context, statusCode int, message string, details string) {
	c.JSON(statusCode, gin.H{
		"ok":      false,
		"message": message,
		"error":   details,
	})
}
