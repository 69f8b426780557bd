package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const opTimeout = 200 * time.Millisecond

// SetWithTimeout guarda el valor con el TTL por defecto de la caché (CACHE_TTL_SECONDS).
// Es síncrono: una invalidación posterior siempre llega después. Los errores solo se registran.
func SetWithTimeout(ctx context.Context, cache Cache, key string, value interface{}, log *zap.Logger) {
	if cache == nil {
		return
	}

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	if err := cache.Set(cacheCtx, key, value, 0); err != nil {
		log.Warn("Cache update failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Invalidate borra las claves antes de responder a la escritura.
func Invalidate(ctx context.Context, cache Cache, log *zap.Logger, keys ...string) {
	if cache == nil {
		return
	}

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	for _, key := range keys {
		if err := cache.Delete(cacheCtx, key); err != nil {
			log.Warn("Cache deletion failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}
