package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/igrejalab/internal/auditoria/application"
	auditDomain "github.com/davicafu/igrejalab/internal/auditoria/domain"
	"github.com/davicafu/igrejalab/internal/mocks"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
)

func newTestRouter(store auditDomain.AuditStore) http.Handler {
	service := application.NewAuditService(store, zap.NewNop())
	return sharedHttp.NewRouter(NewAuditHandler(service).Routes(), zap.NewNop())
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAuditHandler_Historico(t *testing.T) {
	store := new(mocks.MockAuditStore)
	entry, err := auditDomain.NewAuditEntry("lancamentos_financeiros", auditDomain.AcaoInsert, "abc", map[string]string{"valor": "10"}, "127.0.0.1")
	require.NoError(t, err)
	store.On("ListByRegistro", mock.Anything, "lancamentos_financeiros", "abc").Return([]auditDomain.AuditEntry{entry}, nil)

	w := get(newTestRouter(store), "/auditoria/historico?tabela=lancamentos_financeiros&registro_id=abc")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data []auditDomain.AuditEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, auditDomain.AcaoInsert, body.Data[0].Acao)
	assert.JSONEq(t, `{"valor":"10"}`, string(body.Data[0].Dados))
}

func TestAuditHandler_Errors(t *testing.T) {
	store := new(mocks.MockAuditStore)
	store.On("ListByRegistro", mock.Anything, "pessoas", "x").Return(nil, errors.New("mongo down"))
	r := newTestRouter(store)

	w := get(r, "/auditoria/historico?tabela=pessoas")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/auditoria/historico?tabela=pessoas&registro_id=x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"mongo down"}`, w.Body.String())
}
