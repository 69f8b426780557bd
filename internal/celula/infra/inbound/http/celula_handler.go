package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/igrejalab/internal/celula/application"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

const Module = "celulas"

// CelulaHandler encapsula los endpoints HTTP de /celulas
type CelulaHandler struct {
	service  *application.CelulaService
	maxLimit int
}

func NewCelulaHandler(service *application.CelulaService, maxLimit int) *CelulaHandler {
	return &CelulaHandler{service: service, maxLimit: maxLimit}
}

func (h *CelulaHandler) Routes() []sharedHttp.Route {
	return []sharedHttp.Route{
		{Method: http.MethodGet, Module: Module, Action: "list", Handler: h.ListCelulas},
		{Method: http.MethodGet, Module: Module, Action: ":id", Handler: h.GetCelula},
		{Method: http.MethodPost, Module: Module, Action: "create", Handler: h.CreateCelula},
		{Method: http.MethodPut, Module: Module, Action: ":id", Handler: h.UpdateCelula},
		{Method: http.MethodDelete, Module: Module, Action: ":id", Handler: h.DeleteCelula},
		{Method: http.MethodPost, Module: Module, Action: "membros", Handler: h.AddMembro},
		{Method: http.MethodPost, Module: Module, Action: "agendar-reuniao", Handler: h.AgendarReuniao},
		{Method: http.MethodPost, Module: Module, Action: "presenca", Handler: h.RegistrarPresenca},
	}
}

type celulaRequest struct {
	Nome          *string    `json:"nome"`
	Descricao     *string    `json:"descricao"`
	LiderID       *uuid.UUID `json:"lider_id"`
	SupervisorID  *uuid.UUID `json:"supervisor_id"`
	CoordenadorID *uuid.UUID `json:"coordenador_id"`
	DiaSemana     *string    `json:"dia_semana"`
	Horario       *string    `json:"horario"`
	Endereco      *string    `json:"endereco"`
	Ativa         *bool      `json:"ativa"`
}

func (r celulaRequest) input() application.CelulaInput {
	return application.CelulaInput{
		Nome:          r.Nome,
		Descricao:     r.Descricao,
		LiderID:       r.LiderID,
		SupervisorID:  r.SupervisorID,
		CoordenadorID: r.CoordenadorID,
		DiaSemana:     r.DiaSemana,
		Horario:       r.Horario,
		Endereco:      r.Endereco,
		Ativa:         r.Ativa,
	}
}

type membroRequest struct {
	CelulaID uuid.UUID `json:"celula_id"`
	PessoaID uuid.UUID `json:"pessoa_id"`
}

type reuniaoRequest struct {
	CelulaID    uuid.UUID `json:"celula_id"`
	DataReuniao string    `json:"data_reuniao"`
	Tema        string    `json:"tema"`
	Local       string    `json:"local"`
	Observacoes string    `json:"observacoes"`
}

type presencaRequest struct {
	CelulaID         uuid.UUID   `json:"celula_id"`
	DataReuniao      string      `json:"data_reuniao"`
	Tema             string      `json:"tema"`
	Visitantes       int         `json:"visitantes"`
	Observacoes      string      `json:"observacoes"`
	MembrosPresentes []uuid.UUID `json:"membros_presentes"`
}

// ListCelulas GET /celulas/list?page=&limit=&search=&sortBy=&sortOrder=
func (h *CelulaHandler) ListCelulas(c *gin.Context) {
	p := sharedQuery.ParsePagination(c.Request.URL.Query(), h.maxLimit)

	page, err := h.service.ListCelulas(c.Request.Context(), p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetCelula GET /celulas/:id
func (h *CelulaHandler) GetCelula(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	detalhe, err := h.service.GetCelula(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detalhe)
}

// CreateCelula POST /celulas/create
func (h *CelulaHandler) CreateCelula(c *gin.Context) {
	var req celulaRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	celula, err := h.service.CreateCelula(c.Request.Context(), req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, celula)
}

// UpdateCelula PUT /celulas/:id
func (h *CelulaHandler) UpdateCelula(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req celulaRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	celula, err := h.service.UpdateCelula(c.Request.Context(), id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, celula)
}

// DeleteCelula DELETE /celulas/:id
func (h *CelulaHandler) DeleteCelula(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.DeleteCelula(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddMembro POST /celulas/membros
func (h *CelulaHandler) AddMembro(c *gin.Context) {
	var req membroRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.CelulaID == uuid.Nil || req.PessoaID == uuid.Nil {
		_ = c.Error(sharedDomain.InvalidInput(fmt.Errorf("celula_id and pessoa_id are required")))
		return
	}

	membro, err := h.service.AddMembro(c.Request.Context(), req.CelulaID, req.PessoaID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, membro)
}

// AgendarReuniao POST /celulas/agendar-reuniao
func (h *CelulaHandler) AgendarReuniao(c *gin.Context) {
	var req reuniaoRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	data, err := parseDataReuniao(req.DataReuniao)
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.service.AgendarReuniao(c.Request.Context(), application.AgendarReuniaoInput{
		CelulaID:    req.CelulaID,
		DataReuniao: data,
		Tema:        req.Tema,
		Local:       req.Local,
		Observacoes: req.Observacoes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// RegistrarPresenca POST /celulas/presenca
func (h *CelulaHandler) RegistrarPresenca(c *gin.Context) {
	var req presencaRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	data, err := parseDataReuniao(req.DataReuniao)
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.service.RegistrarPresenca(c.Request.Context(), application.PresencaInput{
		CelulaID:         req.CelulaID,
		DataReuniao:      data,
		Tema:             req.Tema,
		Visitantes:       req.Visitantes,
		Observacoes:      req.Observacoes,
		MembrosPresentes: req.MembrosPresentes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func parseDataReuniao(raw string) (time.Time, error) {
	data, err := sharedHttp.ParseDate("data_reuniao", raw)
	if err != nil {
		return time.Time{}, err
	}
	if data == nil {
		return time.Time{}, sharedDomain.InvalidInput(fmt.Errorf("data_reuniao is required"))
	}
	return *data, nil
}
