package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_MissingEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")

	w := httptest.NewRecorder()
	Handler(w, httptest.NewRequest(http.MethodGet, "/api/pessoas/list", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "environment variables missing")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	Handler(w, httptest.NewRequest(http.MethodOptions, "/api/pessoas/list", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
