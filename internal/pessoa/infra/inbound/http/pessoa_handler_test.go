package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/igrejalab/internal/mocks"
	"github.com/davicafu/igrejalab/internal/pessoa/application"
	pessoaDomain "github.com/davicafu/igrejalab/internal/pessoa/domain"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

func newTestRouter() http.Handler {
	service := application.NewPessoaService(mocks.NewInMemoryPessoaRepo(), mocks.NewDummyCache(), zap.NewNop())
	return sharedHttp.NewRouter(NewPessoaHandler(service, 0).Routes(), zap.NewNop())
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPessoaHandler_CRUD(t *testing.T) {
	r := newTestRouter()

	w := request(t, r, http.MethodPost, "/pessoas/create", `{"nome":"Ana","email":"ana@igreja.org","data_nascimento":"1990-01-02"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created pessoaDomain.Pessoa
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Ana", created.Nome)
	require.NotNil(t, created.DataNascimento)

	w = request(t, r, http.MethodGet, "/pessoas/"+created.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(t, r, http.MethodPut, "/pessoas/"+created.ID.String(), `{"telefone":"1199"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated pessoaDomain.Pessoa
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "1199", updated.Telefone)
	assert.Equal(t, "ana@igreja.org", updated.Email)

	w = request(t, r, http.MethodGet, "/pessoas/list?search=ana", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page sharedQuery.Page[pessoaDomain.Pessoa]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, 20, page.Pagination.Limit)

	w = request(t, r, http.MethodDelete, "/pessoas/"+created.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(t, r, http.MethodGet, "/pessoas/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPessoaHandler_BadRequests(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"json inválido", http.MethodPost, "/pessoas/create", `{`, http.StatusBadRequest},
		{"sem nome", http.MethodPost, "/pessoas/create", `{"email":"x@y.z"}`, http.StatusBadRequest},
		{"data inválida", http.MethodPost, "/pessoas/create", `{"nome":"A","data_nascimento":"02/01/1990"}`, http.StatusBadRequest},
		{"id inválido", http.MethodGet, "/pessoas/abc", "", http.StatusBadRequest},
		{"ação desconhecida", http.MethodPost, "/pessoas/importar", `{}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
