package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/pkg/errors"
)

// WriteError writes err with the status its type maps to. Server side
// failures are logged and their details kept out of the response.
func WriteError(c *gin.Context, logger *zap.Logger, err error) {
	status := errors.HTTPStatus(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", GetRequestID(c)),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Debug("Request rejected", fields...)
	}

	body := gin.H{"error": publicMessage(status, err)}
	var validation *errors.ErrValidation
	if stderrors.As(err, &validation) && len(validation.Fields) > 0 {
		body["fields"] = validation.Fields
	}
	c.JSON(status, body)
}

// AbortWithError is WriteError for middleware that stops the chain
func AbortWithError(c *gin.Context, logger *zap.Logger, err error) {
	WriteError(c, logger, err)
	c.Abort()
}

func publicMessage(status int, err error) string {
	var (
		notFound      *errors.ErrNotFound
		validation    *errors.ErrValidation
		conflict      *errors.ErrConflict
		unauthorized  *errors.ErrUnauthorized
		notConfigured *errors.ErrNotConfigured
	)
	switch {
	case stderrors.As(err, &notFound):
		return notFound.Error()
	case stderrors.As(err, &validation):
		return validation.Error()
	case stderrors.As(err, &conflict):
		return conflict.Error()
	case stderrors.As(err, &unauthorized):
		return unauthorized.Error()
	case stderrors.As(err, &notConfigured):
		return notConfigured.Error()
	case status == http.StatusBadGateway:
		return "upstream service error"
	default:
		return "internal error"
	}
}
