package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	log  *zap.Logger
	once sync.Once
)

// Init inicializa el logger global. Llamadas repetidas no tienen efecto.
func Init() {
	once.Do(func() {
		var err error
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.MessageKey = "msg"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"

		log, err = cfg.Build()
		if err != nil {
			panic(err)
		}
	})
}

// Sugar retorna un logger más “friendly” para usar con printf-like
func Sugar() *zap.SugaredLogger {
	return Logger().Sugar()
}

// Logger retorna el logger estructurado; inicializa si hace falta.
func Logger() *zap.Logger {
	Init()
	return log
}
