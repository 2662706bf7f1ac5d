package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"register_server/internal/dto/respond"
	"register_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// HandleCreated 返回 201 与创建结果
func HandleCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// HandleError 通用错误处理
//   - VALIDATION_FAILED -> 400，携带全部字段错误
//   - 其他错误 -> 500 INTERNAL_ERROR，只返回安全的描述，底层错误记录日志
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && codeErr.Code == errorx.CodeValidationFailed {
		writeValidationFailed(c, codeErr.Fields)
		return
	}

	zap.L().Error("system error",
		zap.String("code", errorx.GetCode(err)),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)

	msg := errorx.ErrServerBusy.Msg
	if codeErr != nil && codeErr.Msg != "" {
		msg = codeErr.Msg
	}
	c.JSON(http.StatusInternalServerError, respond.ErrorRespond{
		Error: respond.ErrorDetail{
			Code:   errorx.CodeInternalError,
			Fields: map[string]string{"message": msg},
		},
	})
}

// HandleParamError 处理参数绑定错误
// validator 错误按字段翻译；类型、JSON 语法错误也按字段归类
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		writeValidationFailed(c, TranslateFieldErrors(validationErrs))
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		writeValidationFailed(c, map[string]string{typeErr.Field: "Invalid value type"})
		return
	}

	zap.L().Warn("param bind error", zap.Error(err))
	writeValidationFailed(c, map[string]string{"body": "Malformed JSON request body"})
}

func writeValidationFailed(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, respond.ErrorRespond{
		Error: respond.ErrorDetail{
			Code:   errorx.CodeValidationFailed,
			Fields: fields,
		},
	})
}
