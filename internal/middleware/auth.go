package middleware

import (
	"anchor_lms_backend/internal/config"
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 验证 Authorization 头中的 Bearer token，失败即中断请求
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, cfg)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		c.Set("user", claims)
		c.Next()
	}
}

// TryAuthMiddleware 尽力解析身份，解析不出也放行，供公开接口区分游客与登录用户
func TryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, cfg); ok {
			c.Set("user", claims)
		}
		c.Next()
	}
}

// RoleMiddleware 角色校验，要求先经过 AuthMiddleware
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		util.Forbidden(c)
		c.Abort()
	}
}

func parseBearer(c *gin.Context, cfg *config.Config) (*util.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	claims, err := util.ParseJWT(parts[1], cfg.JWT.Secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}
