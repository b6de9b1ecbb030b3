package http

import "github.com/gin-gonic/gin"

// MsgResponse writes the {"msg": ...} failure/confirmation body used across
// the classroom API.
func MsgResponse(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"msg": msg})
}
