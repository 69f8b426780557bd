package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/igrejalab/internal/shared/infra/platform/metrics"
	"github.com/davicafu/igrejalab/pkg/utils"
)

// Route es una entrada de la tabla de rutas: /{module}/{action}.
// Action puede ser literal ("list", "agendar-reuniao") o ":id".
type Route struct {
	Method  string
	Module  string
	Action  string
	Handler gin.HandlerFunc
}

func (r Route) Path() string {
	return "/" + r.Module + "/" + r.Action
}

const (
	msgModuleNotFound = "Module not found"
	msgActionNotFound = "Action not found"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewRouter registra la tabla de rutas una sola vez sobre un engine de gin.
func NewRouter(routes []Route, log *zap.Logger) *gin.Engine {
	modules := make(map[string]bool)
	for _, r := range routes {
		modules[r.Module] = true
	}
	moduleOf := func(path string) string {
		if m := firstSegment(path); modules[m] {
			return m
		}
		return "other"
	}

	r := gin.New()
	r.Use(
		CORS(),
		Recovery(log),
		RequestLogger(log),
		metrics.Middleware(moduleOf),
		ErrorHandler(log),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	for _, route := range routes {
		r.Handle(route.Method, route.Path(), route.Handler)
	}

	r.NoRoute(func(c *gin.Context) {
		if modules[firstSegment(c.Request.URL.Path)] {
			utils.SendNotFound(c, msgActionNotFound)
			return
		}
		utils.SendNotFound(c, msgModuleNotFound)
	})

	return r
}

// NewUnavailableRouter responde 500 a todo salvo OPTIONS; se usa cuando la config no es válida.
func NewUnavailableRouter(cause error) *gin.Engine {
	r := gin.New()
	r.Use(CORS())
	r.NoRoute(func(c *gin.Context) {
		utils.SendInternalServerError(c, cause.Error())
	})
	return r
}

func firstSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
