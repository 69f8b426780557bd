package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/pkg/utils"
)

// CORS pone las mismas cabeceras en todas las respuestas y corta los preflight con 204.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Recovery convierte un panic en 500 {"error": ...}.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		utils.SendInternalServerError(c, fmt.Sprint(recovered))
	})
}

// RequestLogger registra cada petición con zap.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// ErrorHandler es el único punto donde los errores de los handlers se convierten en respuesta.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
		utils.SendError(c, status, err.Error())
	}
}

// StatusFor traduce errores de dominio a códigos HTTP.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, sharedDomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharedDomain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, sharedDomain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
