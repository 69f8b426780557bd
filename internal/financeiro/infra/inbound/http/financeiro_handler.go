package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davicafu/igrejalab/internal/financeiro/application"
	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

const Module = "financeiro"

// FinanceiroHandler encapsula los endpoints HTTP de /financeiro
type FinanceiroHandler struct {
	service  *application.FinanceiroService
	maxLimit int
}

func NewFinanceiroHandler(service *application.FinanceiroService, maxLimit int) *FinanceiroHandler {
	return &FinanceiroHandler{service: service, maxLimit: maxLimit}
}

// Routes solo incluye tendencia si hay almacén analítico.
func (h *FinanceiroHandler) Routes() []sharedHttp.Route {
	routes := []sharedHttp.Route{
		{Method: http.MethodGet, Module: Module, Action: "lancamentos", Handler: h.ListLancamentos},
		{Method: http.MethodGet, Module: Module, Action: "relatorio", Handler: h.Relatorio},
		{Method: http.MethodPost, Module: Module, Action: "lancamento", Handler: h.CreateLancamento},
	}
	if h.service.HasAnalytics() {
		routes = append(routes, sharedHttp.Route{Method: http.MethodGet, Module: Module, Action: "tendencia", Handler: h.Tendencia})
	}
	return routes
}

type lancamentoRequest struct {
	Tipo           string          `json:"tipo"`
	Categoria      string          `json:"categoria"`
	Descricao      string          `json:"descricao"`
	Valor          decimal.Decimal `json:"valor"`
	DataLancamento string          `json:"data_lancamento"`
	PessoaID       *uuid.UUID      `json:"pessoa_id"`
}

// periodo lee data_inicio y data_fim de la query string.
func periodo(c *gin.Context) (inicio, fim *time.Time, err error) {
	if inicio, err = sharedHttp.ParseDate("data_inicio", c.Query("data_inicio")); err != nil {
		return nil, nil, err
	}
	if fim, err = sharedHttp.ParseDate("data_fim", c.Query("data_fim")); err != nil {
		return nil, nil, err
	}
	return inicio, fim, nil
}

// ListLancamentos GET /financeiro/lancamentos?tipo=&data_inicio=&data_fim=&search=&page=&limit=
func (h *FinanceiroHandler) ListLancamentos(c *gin.Context) {
	inicio, fim, err := periodo(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	p := sharedQuery.ParsePagination(c.Request.URL.Query(), h.maxLimit)

	page, err := h.service.ListLancamentos(c.Request.Context(), application.FiltroLancamentos{
		Tipo:       finDomain.Tipo(c.Query("tipo")),
		DataInicio: inicio,
		DataFim:    fim,
	}, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Relatorio GET /financeiro/relatorio?data_inicio=&data_fim=
func (h *FinanceiroHandler) Relatorio(c *gin.Context) {
	inicio, fim, err := periodo(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	relatorio, err := h.service.Relatorio(c.Request.Context(), inicio, fim)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, relatorio)
}

// CreateLancamento POST /financeiro/lancamento
func (h *FinanceiroHandler) CreateLancamento(c *gin.Context) {
	var req lancamentoRequest
	if err := sharedHttp.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	data, err := sharedHttp.ParseDate("data_lancamento", req.DataLancamento)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if data == nil {
		hoje := time.Now().UTC()
		data = &hoje
	}

	l, err := h.service.CreateLancamento(c.Request.Context(), application.CreateLancamentoInput{
		Tipo:           finDomain.Tipo(req.Tipo),
		Categoria:      req.Categoria,
		Descricao:      req.Descricao,
		Valor:          req.Valor,
		DataLancamento: *data,
		PessoaID:       req.PessoaID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// Tendencia GET /financeiro/tendencia?meses=12
func (h *FinanceiroHandler) Tendencia(c *gin.Context) {
	meses, _ := strconv.Atoi(c.DefaultQuery("meses", strconv.Itoa(application.DefaultMeses)))

	trends, err := h.service.Tendencia(c.Request.Context(), meses)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trends})
}
