package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/igrejalab/internal/auditoria/application"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
)

const Module = "auditoria"

// AuditHandler expone el histórico de auditoría de un registro.
type AuditHandler struct {
	service *application.AuditService
}

func NewAuditHandler(service *application.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) Routes() []sharedHttp.Route {
	return []sharedHttp.Route{
		{Method: http.MethodGet, Module: Module, Action: "historico", Handler: h.Historico},
	}
}

// Historico GET /auditoria/historico?tabela=&registro_id=
func (h *AuditHandler) Historico(c *gin.Context) {
	tabela, registroID := c.Query("tabela"), c.Query("registro_id")
	if tabela == "" || registroID == "" {
		_ = c.Error(sharedDomain.InvalidInput(errors.New("tabela and registro_id are required")))
		return
	}

	entries, err := h.service.History(c.Request.Context(), tabela, registroID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
