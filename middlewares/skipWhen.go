package middlewares

import "github.com/gin-gonic/gin"

// SkipWhen runs mw only for requests where skip reports false.
func SkipWhen(skip func(*gin.Context) bool, mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skip(c) {
			c.Next()
			return
		}
		mw(c)
	}
}
