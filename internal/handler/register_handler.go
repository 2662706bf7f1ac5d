// Package handler 提供 HTTP 请求处理器
// 本文件处理注册请求
package handler

import (
	"register_server/internal/dto/request"
	"register_server/internal/service"
	"register_server/pkg/constants"

	"github.com/gin-gonic/gin"
)

// RegisterHandler 注册请求处理器
type RegisterHandler struct {
	registerSvc service.RegisterService
}

// NewRegisterHandler 创建注册处理器实例
func NewRegisterHandler(registerSvc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{registerSvc: registerSvc}
}

// Register 用户注册
// POST /api/v1/register
// 请求头: Idempotency-Key（可选，由 Idempotency 中间件写入上下文）
// 请求体: request.RegisterRequest
// 响应: 201 respond.RegisterRespond
func (h *RegisterHandler) Register(c *gin.Context) {
	// 1. 格式校验
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	// 2. 幂等注册
	key := c.GetString(constants.IDEMPOTENCY_CTX_KEY)
	if key == "" {
		key = c.GetHeader(constants.IDEMPOTENCY_HEADER)
	}
	data, _, err := h.registerSvc.Register(c.Request.Context(), req, key)
	if err != nil {
		HandleError(c, err)
		return
	}

	// 3. 首次创建与重放都返回 201
	HandleCreated(c, data)
}
