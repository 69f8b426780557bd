package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/igrejalab/internal/evento/application"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

const Module = "eventos"

// EventoHandler encapsula los endpoints HTTP de /eventos
type EventoHandler struct {
	service  *application.EventoService
	maxLimit int
}

func NewEventoHandler(service *application.EventoService, maxLimit int) *EventoHandler {
	return &EventoHandler{service: service, maxLimit: maxLimit}
}

func (h *EventoHandler) Routes() []sharedHttp.Route {
	return []sharedHttp.Route{
		{Method: http.MethodGet, Module: Module, Action: "list", Handler: h.ListEventos},
		{Method: http.MethodGet, Module: Module, Action: ":id", Handler: h.GetEvento},
		{Method: http.MethodPost, Module: Module, Action: "create", Handler: h.CreateEvento},
		{Method: http.MethodPut, Module: Module, Action: ":id", Handler: h.UpdateEvento},
		{Method: http.MethodDelete, Module: Module, Action: ":id", Handler: h.DeleteEvento},
		{Method: http.MethodPost, Module: Module, Action: "inscricao", Handler: h.Inscricao},
	}
}

type eventoRequest struct {
	Titulo     *string `json:"titulo"`
	Descricao  *string `json:"descricao"`
	DataInicio *string `json:"data_inicio"` // YYYY-MM-DD o RFC3339
	DataFim    *string `json:"data_fim"`
	Local      *string `json:"local"`
	Capacidade *int    `json:"capacidade"`
}

func (r eventoRequest) input() (application.EventoInput, error) {
	in := application.EventoInput{
		Titulo:     r.Titulo,
		Descricao:  r.Descricao,
		Local:      r.Local,
		Capacidade: r.Capacidade,
	}
	var err error
	if r.DataInicio != nil {
		if in.DataInicio, err = sharedHttp.ParseDate("data_inicio", *r.DataInicio); err != nil {
			return in, err
		}
	}
	if r.DataFim != nil {
		if in.DataFim, err = sharedHttp.ParseDate("data_fim", *r.DataFim); err != nil {
			return in, err
		}
	}
	return in, nil
}

type inscricaoRequest struct {
	EventoID uuid.UUID `json:"evento_id"`
	PessoaID uuid.UUID `json:"pessoa_id"`
}

// ListEventos GET /eventos/list?page=&limit=&search=&sortBy=&sortOrder=
func (h *EventoHandler) ListEventos(c *gin.Context) {
	p := sharedQuery.ParsePagination(c.Request.URL.Query(), h.maxLimit)

	page, err := h.service.ListEventos(c.Request.Context(), p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetEvento GET /eventos/:id
func (h *EventoHandler) GetEvento(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	evento, err := h.service.GetEvento(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, evento)
}

// CreateEvento POST /eventos/create
func (h *EventoHandler) CreateEvento(c *gin.Context) {
	var req eventoRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	in, err := req.input()
	if err != nil {
		_ = c.Error(err)
		return
	}

	evento, err := h.service.CreateEvento(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, evento)
}

// UpdateEvento PUT /eventos/:id
func (h *EventoHandler) UpdateEvento(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req eventoRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	in, err := req.input()
	if err != nil {
		_ = c.Error(err)
		return
	}

	evento, err := h.service.UpdateEvento(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, evento)
}

// DeleteEvento DELETE /eventos/:id
func (h *EventoHandler) DeleteEvento(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.DeleteEvento(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Inscricao POST /eventos/inscricao
func (h *EventoHandler) Inscricao(c *gin.Context) {
	var req inscricaoRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	inscricao, err := h.service.Inscrever(c.Request.Context(), req.EventoID, req.PessoaID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, inscricao)
}
