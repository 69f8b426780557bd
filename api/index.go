// Package handler es la función serverless: un único Handler que sirve todos los módulos.
package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/davicafu/igrejalab/internal/app"
	"github.com/davicafu/igrejalab/internal/config"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	"github.com/davicafu/igrejalab/pkg/logger"
)

const prefix = "/api"

var (
	once   sync.Once
	router http.Handler
)

// setup corre una vez por arranque en frío; sin workers en segundo plano, el outbox se
// publica al final de cada escritura.
func setup() {
	log := logger.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuración inválida", zap.Error(err))
		router = sharedHttp.NewUnavailableRouter(err)
		return
	}

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to start application", zap.Error(err))
		router = sharedHttp.NewUnavailableRouter(err)
		return
	}
	router = a.ServerlessHandler()
}

func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)

	if p := strings.TrimPrefix(r.URL.Path, prefix); p != r.URL.Path {
		r.URL.Path = p
		r.URL.RawPath = ""
	}
	router.ServeHTTP(w, r)
}
