package middleware

import (
	"github.com/haierkeys/fast-roadmap-service/pkg/app"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 未匹配路由时返回 404 码，details 中带上请求的方法和路径
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFoundAPI.WithDetails(c.Request.Method + " " + c.Request.URL.Path))
		c.Abort()
	}
}
