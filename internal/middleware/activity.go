package middleware

import (
	"anchor_lms_backend/internal/service"
	"anchor_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ActivityMiddleware 请求结束后异步刷新用户的最近活跃时间
func ActivityMiddleware(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		claims := util.GetUserFromContext(c)
		if claims == nil {
			return
		}
		go users.Touch(claims.UserID)
	}
}
