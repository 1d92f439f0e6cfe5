package handler

import (
	"github.com/gin-gonic/gin"

	"ali-assistant-api/internal/interfaces/http/dto"
	pkgerrors "ali-assistant-api/pkg/errors"
	"ali-assistant-api/pkg/logger"
)

// respondError 将应用错误翻译为统一的错误响应
func respondError(c *gin.Context, err error) {
	appErr := pkgerrors.AsAppError(err)

	if appErr.HTTPStatus >= 500 {
		logger.Error(c.Request.Context(), "request failed", err,
			"path", c.Request.URL.Path,
			"code", string(appErr.Code),
		)
	}

	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
		ErrorCode: string(appErr.Code),
		Details:   appErr.Detail,
	})
}
