package cache

import (
	"github.com/jhoicas/Produccion-api/internal/application/catalog"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

// NewCatalogCache Redis si REDIS_ADDR está configurado y responde; si no, memoria.
// El segundo valor cierra las conexiones abiertas.
func NewCatalogCache(cfg config.RedisConfig, log *logger.Logger) (catalog.Cache, func() error) {
	if cfg.Addr == "" {
		log.Info().Msg("caché de catálogos en memoria")
		return NewMemoryCatalogCache(), func() error { return nil }
	}
	rc, err := NewRedisCatalogCache(cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis no disponible, caché de catálogos en memoria")
		return NewMemoryCatalogCache(), func() error { return nil }
	}
	log.Info().Str("addr", cfg.Addr).Msg("caché de catálogos en Redis")
	return rc, rc.Close
}
