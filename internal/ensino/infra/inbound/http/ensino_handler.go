package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/igrejalab/internal/ensino/application"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

const Module = "ensino"

// EnsinoHandler encapsula los endpoints HTTP de /ensino
type EnsinoHandler struct {
	service  *application.EnsinoService
	maxLimit int
}

func NewEnsinoHandler(service *application.EnsinoService, maxLimit int) *EnsinoHandler {
	return &EnsinoHandler{service: service, maxLimit: maxLimit}
}

func (h *EnsinoHandler) Routes() []sharedHttp.Route {
	return []sharedHttp.Route{
		{Method: http.MethodGet, Module: Module, Action: "cursos", Handler: h.ListCursos},
		{Method: http.MethodGet, Module: Module, Action: "progresso", Handler: h.ListProgresso},
		{Method: http.MethodGet, Module: Module, Action: ":id", Handler: h.GetCurso},
		{Method: http.MethodPost, Module: Module, Action: "curso", Handler: h.CreateCurso},
		{Method: http.MethodPost, Module: Module, Action: "matricular", Handler: h.Matricular},
		{Method: http.MethodPost, Module: Module, Action: "marcar-licao", Handler: h.MarcarLicao},
		{Method: http.MethodPost, Module: Module, Action: "recalcular", Handler: h.Recalcular},
	}
}

type cursoRequest struct {
	Titulo    string   `json:"titulo"`
	Descricao string   `json:"descricao"`
	Licoes    []string `json:"licoes"`
}

type matriculaRequest struct {
	PessoaID uuid.UUID `json:"pessoa_id"`
	CursoID  uuid.UUID `json:"curso_id"`
}

type marcarLicaoRequest struct {
	PessoaID         uuid.UUID `json:"pessoa_id"`
	LicaoID          uuid.UUID `json:"licao_id"`
	ProgressoPercent *int      `json:"progresso_percent"`
}

// ListCursos GET /ensino/cursos?page=&limit=&search=&sortBy=&sortOrder=
func (h *EnsinoHandler) ListCursos(c *gin.Context) {
	p := sharedQuery.ParsePagination(c.Request.URL.Query(), h.maxLimit)

	page, err := h.service.ListCursos(c.Request.Context(), p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetCurso GET /ensino/:id
func (h *EnsinoHandler) GetCurso(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	curso, err := h.service.GetCurso(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, curso)
}

// CreateCurso POST /ensino/curso
func (h *EnsinoHandler) CreateCurso(c *gin.Context) {
	var req cursoRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	curso, err := h.service.CreateCurso(c.Request.Context(), application.CreateCursoInput{
		Titulo:    req.Titulo,
		Descricao: req.Descricao,
		Licoes:    req.Licoes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, curso)
}

// Matricular POST /ensino/matricular
func (h *EnsinoHandler) Matricular(c *gin.Context) {
	var req matriculaRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	matricula, err := h.service.Matricular(c.Request.Context(), req.PessoaID, req.CursoID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, matricula)
}

// MarcarLicao POST /ensino/marcar-licao
func (h *EnsinoHandler) MarcarLicao(c *gin.Context) {
	var req marcarLicaoRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.ProgressoPercent == nil {
		_ = c.Error(sharedDomain.InvalidInput(errors.New("progresso_percent is required")))
		return
	}

	marcada, err := h.service.MarcarLicao(c.Request.Context(), req.PessoaID, req.LicaoID, *req.ProgressoPercent)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, marcada)
}

// ListProgresso GET /ensino/progresso?pessoa_id=
func (h *EnsinoHandler) ListProgresso(c *gin.Context) {
	pessoaID, err := sharedHttp.QueryUUID(c, "pessoa_id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	p := sharedQuery.ParsePagination(c.Request.URL.Query(), h.maxLimit)

	page, err := h.service.ListProgresso(c.Request.Context(), pessoaID, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Recalcular POST /ensino/recalcular
func (h *EnsinoHandler) Recalcular(c *gin.Context) {
	var req matriculaRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	progresso, err := h.service.RecalcularProgresso(c.Request.Context(), req.PessoaID, req.CursoID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, progresso)
}
