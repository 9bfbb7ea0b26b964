// Package app gin 响应封装：统一响应体、附件下载与参数绑定
package app

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

// Res 统一响应体。成功时 status 为 true，data 为业务数据；details 为逗号拼接的详情
type Res struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// GetAccessHost 客户端访问本服务使用的协议与主机，反向代理时取 X-Forwarded-Proto
func GetAccessHost(c *gin.Context) string {
	proto := c.Request.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
	}
	return proto + "://" + c.Request.Host
}

// ToResponse 按错误码输出统一响应体
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	r.Ctx.JSON(codeObj.StatusCode(), content)
}

// ToAttachment 以附件形式输出文件内容，用于 roadmap.json 下载
func (r *Response) ToAttachment(fileName, contentType string, body []byte) {
	r.Ctx.Set("status_code", http.StatusOK)
	r.Ctx.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	r.Ctx.Header("Content-Length", strconv.Itoa(len(body)))
	r.Ctx.Data(http.StatusOK, contentType, body)
}
