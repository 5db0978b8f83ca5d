package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer query parameter, falling back to the
// default on absence or parse failure.
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// QueryIntClamped is QueryInt with a lower bound applied afterwards.
func QueryIntClamped(c *gin.Context, key string, defaultValue, min int) int {
	v := QueryInt(c, key, defaultValue)
	if v < min {
		return defaultValue
	}
	return v
}
