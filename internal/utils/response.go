package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一API响应结构
type Response struct {
	Code    int         `json:"code"`    // 状态码
	Message string      `json:"message"` // 消息
	Data    interface{} `json:"data"`    // 数据
	Success bool        `json:"success"` // 是否成功
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
		Success: true,
	})
}

// Created 返回 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
		Success: true,
	})
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
		Success: false,
	})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "잘못된 요청입니다"
	}
	Error(c, http.StatusBadRequest, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "리소스를 찾을 수 없습니다"
	}
	Error(c, http.StatusNotFound, message)
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "서버 내부 오류가 발생했습니다"
	}
	Error(c, http.StatusInternalServerError, message)
}

// BadGateway 上游服务（文本生成等）失败
func BadGateway(c *gin.Context, message string) {
	if message == "" {
		message = "외부 서비스 호출에 실패했습니다"
	}
	Error(c, http.StatusBadGateway, message)
}

// ServiceUnavailable 依赖的存储不可用
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "서비스를 일시적으로 사용할 수 없습니다"
	}
	Error(c, http.StatusServiceUnavailable, message)
}
