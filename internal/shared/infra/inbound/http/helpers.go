package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
)

// ParamUUID lee un parámetro de ruta como UUID.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, sharedDomain.InvalidInput(fmt.Errorf("invalid %s", name))
	}
	return id, nil
}

// QueryUUID lee un query param obligatorio como UUID.
func QueryUUID(c *gin.Context, name string) (uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, sharedDomain.InvalidInput(fmt.Errorf("%s is required", name))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, sharedDomain.InvalidInput(fmt.Errorf("invalid %s", name))
	}
	return id, nil
}

// BindJSON decodifica el cuerpo; los fallos son errores de validación (400).
func BindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return sharedDomain.InvalidInput(err)
	}
	return nil
}

const DateLayout = "2006-01-02"

// ParseDate acepta YYYY-MM-DD o RFC3339; vacío devuelve nil.
func ParseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, sharedDomain.InvalidInput(fmt.Errorf("invalid %s format, use YYYY-MM-DD", field))
		}
	}
	t = t.UTC()
	return &t, nil
}
