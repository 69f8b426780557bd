package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/igrejalab/internal/evento/application"
	eventoDomain "github.com/davicafu/igrejalab/internal/evento/domain"
	"github.com/davicafu/igrejalab/internal/mocks"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

func newTestRouter() http.Handler {
	service := application.NewEventoService(mocks.NewInMemoryEventoRepo(), mocks.NewDummyCache(), zap.NewNop())
	return sharedHttp.NewRouter(NewEventoHandler(service, 0).Routes(), zap.NewNop())
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestEventoHandler_CRUD(t *testing.T) {
	r := newTestRouter()

	w := request(t, r, http.MethodPost, "/eventos/create",
		`{"titulo":"Conferência","data_inicio":"2025-05-10T19:00:00Z","local":"Templo","capacidade":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created eventoDomain.Evento
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = request(t, r, http.MethodPut, "/eventos/"+created.ID.String(), `{"local":"Ginásio"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(t, r, http.MethodGet, "/eventos/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got eventoDomain.EventoResumo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Ginásio", got.Local)
	assert.Equal(t, 0, got.TotalInscritos)

	w = request(t, r, http.MethodGet, "/eventos/list?search=conf", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page sharedQuery.Page[eventoDomain.EventoResumo]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Pagination.Total)

	w = request(t, r, http.MethodDelete, "/eventos/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = request(t, r, http.MethodGet, "/eventos/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventoHandler_Inscricao(t *testing.T) {
	r := newTestRouter()
	w := request(t, r, http.MethodPost, "/eventos/create", `{"titulo":"Jantar","data_inicio":"2025-05-10","capacidade":1}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var e eventoDomain.Evento
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))

	body := func(pessoa string) string {
		return `{"evento_id":"` + e.ID.String() + `","pessoa_id":"` + pessoa + `"}`
	}
	ana := uuid.NewString()

	w = request(t, r, http.MethodPost, "/eventos/inscricao", body(ana))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(t, r, http.MethodPost, "/eventos/inscricao", body(ana))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"pessoa already registered for evento: conflict"}`, w.Body.String())

	w = request(t, r, http.MethodPost, "/eventos/inscricao", body(uuid.NewString()))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"evento is full: conflict"}`, w.Body.String())
}

func TestEventoHandler_BadInput(t *testing.T) {
	r := newTestRouter()

	w := request(t, r, http.MethodPost, "/eventos/create", `{"titulo":"Sem data"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid input: data_inicio is required"}`, w.Body.String())

	w = request(t, r, http.MethodPost, "/eventos/create", `{"titulo":"X","data_inicio":"10/05/2025"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, r, http.MethodGet, "/eventos/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
