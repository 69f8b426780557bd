package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/davicafu/igrejalab/internal/app"
	"github.com/davicafu/igrejalab/internal/config"
	"github.com/davicafu/igrejalab/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	// .env es opcional; en contenedores las variables ya vienen del entorno.
	if err := godotenv.Load(); err != nil {
		log.Debug("sin fichero .env", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuración inválida", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to start application", zap.Error(err))
	}
	defer application.Close()

	// ------------ Outbox Worker y consumidores ------------
	application.StartBackground(ctx)

	// ---------------- HTTP ----------------
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Apagando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown forzado", zap.Error(err))
	}
}
