package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/igrejalab/internal/pessoa/application"
	pessoaDomain "github.com/davicafu/igrejalab/internal/pessoa/domain"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

const Module = "pessoas"

// PessoaHandler encapsula los endpoints HTTP de /pessoas
type PessoaHandler struct {
	service  *application.PessoaService
	maxLimit int
}

func NewPessoaHandler(service *application.PessoaService, maxLimit int) *PessoaHandler {
	return &PessoaHandler{service: service, maxLimit: maxLimit}
}

func (h *PessoaHandler) Routes() []sharedHttp.Route {
	return []sharedHttp.Route{
		{Method: http.MethodGet, Module: Module, Action: "list", Handler: h.ListPessoas},
		{Method: http.MethodGet, Module: Module, Action: ":id", Handler: h.GetPessoa},
		{Method: http.MethodPost, Module: Module, Action: "create", Handler: h.CreatePessoa},
		{Method: http.MethodPut, Module: Module, Action: ":id", Handler: h.UpdatePessoa},
		{Method: http.MethodDelete, Module: Module, Action: ":id", Handler: h.DeletePessoa},
	}
}

type pessoaRequest struct {
	Nome           *string `json:"nome"`
	Email          *string `json:"email"`
	Telefone       *string `json:"telefone"`
	DataNascimento *string `json:"data_nascimento"` // YYYY-MM-DD
	Status         *string `json:"status"`
}

// ListPessoas GET /pessoas/list?page=&limit=&search=&sortBy=&sortOrder=&status=
func (h *PessoaHandler) ListPessoas(c *gin.Context) {
	p := sharedQuery.ParsePagination(c.Request.URL.Query(), h.maxLimit)

	page, err := h.service.ListPessoas(c.Request.Context(), p, c.Query("status"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPessoa GET /pessoas/:id
func (h *PessoaHandler) GetPessoa(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	pessoa, err := h.service.GetPessoa(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pessoa)
}

// CreatePessoa POST /pessoas/create
func (h *PessoaHandler) CreatePessoa(c *gin.Context) {
	var req pessoaRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	in := application.CreatePessoaInput{
		Nome:     deref(req.Nome),
		Email:    deref(req.Email),
		Telefone: deref(req.Telefone),
		Status:   pessoaDomain.Status(deref(req.Status)),
	}
	nasc, err := sharedHttp.ParseDate("data_nascimento", deref(req.DataNascimento))
	if err != nil {
		_ = c.Error(err)
		return
	}
	in.DataNascimento = nasc

	pessoa, err := h.service.CreatePessoa(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, pessoa)
}

// UpdatePessoa PUT /pessoas/:id
func (h *PessoaHandler) UpdatePessoa(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req pessoaRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	in := application.UpdatePessoaInput{
		Nome:     req.Nome,
		Email:    req.Email,
		Telefone: req.Telefone,
	}
	if req.Status != nil {
		status := pessoaDomain.Status(*req.Status)
		in.Status = &status
	}
	if req.DataNascimento != nil {
		if in.DataNascimento, err = sharedHttp.ParseDate("data_nascimento", *req.DataNascimento); err != nil {
			_ = c.Error(err)
			return
		}
	}

	pessoa, err := h.service.UpdatePessoa(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pessoa)
}

// DeletePessoa DELETE /pessoas/:id
func (h *PessoaHandler) DeletePessoa(c *gin.Context) {
	id, err := sharedHttp.ParamUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.DeletePessoa(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
