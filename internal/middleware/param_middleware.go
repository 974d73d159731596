package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextSessionID - ключ контекста с ID учебной сессии из URL
const ContextSessionID = "session_id"

// SessionParam разбирает ID сессии из параметра paramName.
// Нулевой UUID сессией быть не может и отклоняется как неверный.
func SessionParam(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param(paramName))
		if err != nil || id == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
			return
		}
		c.Set(ContextSessionID, id)
		c.Next()
	}
}

// SessionIDFromContext возвращает ID сессии, положенный SessionParam
func SessionIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
