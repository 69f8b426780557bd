package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/igrejalab/internal/celula/application"
	celulaDomain "github.com/davicafu/igrejalab/internal/celula/domain"
	"github.com/davicafu/igrejalab/internal/mocks"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

func newTestRouter() (http.Handler, *mocks.InMemoryCelulaRepo, *mocks.MockMemberNotifier) {
	repo := mocks.NewInMemoryCelulaRepo()
	notifier := new(mocks.MockMemberNotifier)
	service := application.NewCelulaService(repo, notifier, mocks.NewDummyCache(), zap.NewNop())
	return sharedHttp.NewRouter(NewCelulaHandler(service, 0).Routes(), zap.NewNop()), repo, notifier
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createCelula(t *testing.T, h http.Handler) celulaDomain.Celula {
	t.Helper()
	w := request(t, h, http.MethodPost, "/celulas/create", `{"nome":"Centro","dia_semana":"quarta"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c celulaDomain.Celula
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	return c
}

func TestCelulaHandler_CRUD(t *testing.T) {
	r, _, _ := newTestRouter()
	c := createCelula(t, r)

	w := request(t, r, http.MethodGet, "/celulas/"+c.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var detalhe celulaDomain.CelulaDetalhe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detalhe))
	assert.Equal(t, "quarta", detalhe.DiaSemana)
	assert.NotNil(t, detalhe.Membros)

	w = request(t, r, http.MethodPut, "/celulas/"+c.ID.String(), `{"horario":"19:30"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"horario":"19:30"`)

	w = request(t, r, http.MethodGet, "/celulas/list?search=cen&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page sharedQuery.Page[celulaDomain.CelulaResumo]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, 5, page.Pagination.Limit)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 0, page.Data[0].TotalMembros)

	w = request(t, r, http.MethodDelete, "/celulas/"+c.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = request(t, r, http.MethodGet, "/celulas/"+c.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCelulaHandler_Membros(t *testing.T) {
	r, _, _ := newTestRouter()
	c := createCelula(t, r)
	pessoa := uuid.New()
	body := `{"celula_id":"` + c.ID.String() + `","pessoa_id":"` + pessoa.String() + `"}`

	w := request(t, r, http.MethodPost, "/celulas/membros", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(t, r, http.MethodPost, "/celulas/membros", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = request(t, r, http.MethodPost, "/celulas/membros", `{"celula_id":"`+c.ID.String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCelulaHandler_AgendarReuniao(t *testing.T) {
	r, repo, notifier := newTestRouter()
	c := createCelula(t, r)

	notifier.On("NotifyMembers", mock.Anything, c.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(4, nil)

	w := request(t, r, http.MethodPost, "/celulas/agendar-reuniao",
		`{"celula_id":"`+c.ID.String()+`","data_reuniao":"2025-03-07T20:00:00Z","tema":"Oração"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, float64(4), res["membros_notificados"])
	assert.NotContains(t, res, "erro_notificacao")
	assert.Len(t, repo.Reunioes, 1)

	w = request(t, r, http.MethodPost, "/celulas/agendar-reuniao", `{"celula_id":"`+c.ID.String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid input: data_reuniao is required"}`, w.Body.String())
}

func TestCelulaHandler_Presenca(t *testing.T) {
	r, repo, _ := newTestRouter()
	c := createCelula(t, r)
	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}

	w := request(t, r, http.MethodPost, "/celulas/presenca",
		`{"celula_id":"`+c.ID.String()+`","data_reuniao":"2025-03-07","visitantes":2,"membros_presentes":["`+strings.Join(ids, `","`)+`"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Len(t, repo.Relatorios, 1)
	assert.Len(t, repo.Presencas, 3)

	w = request(t, r, http.MethodPost, "/celulas/presenca", `{"celula_id":"`+c.ID.String()+`","data_reuniao":"07/03/2025"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCelulaHandler_UnknownAction(t *testing.T) {
	r, _, _ := newTestRouter()

	w := request(t, r, http.MethodPost, "/celulas/nao-existe", "{}")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Action not found"}`, w.Body.String())
}
