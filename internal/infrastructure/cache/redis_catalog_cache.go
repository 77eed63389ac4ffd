// Package cache implementaciones de catalog.Cache: Redis para despliegues con
// varias instancias y memoria para una sola instancia o pruebas.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/application/catalog"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

var _ catalog.Cache = (*RedisCatalogCache)(nil)

const defaultKeyPrefix = "produccion:catalogo:"

// RedisCatalogCache guarda cada catálogo completo como un valor JSON con TTL.
type RedisCatalogCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCatalogCache conecta con Redis y verifica la conexión.
func NewRedisCatalogCache(addr, password string, db int) (*RedisCatalogCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: conectar a Redis: %w", err)
	}
	return NewRedisCatalogCacheWithClient(client, ""), nil
}

// NewRedisCatalogCacheWithClient usa un cliente existente.
func NewRedisCatalogCacheWithClient(client *redis.Client, keyPrefix string) *RedisCatalogCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisCatalogCache{client: client, keyPrefix: keyPrefix}
}

// cachedEntry forma serializada de entity.CatalogEntry.
type cachedEntry struct {
	Catalog        entity.Catalog  `json:"catalog"`
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Contact        string          `json:"contact,omitempty"`
	Email          string          `json:"email,omitempty"`
	DocumentType   string          `json:"document_type,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Active         bool            `json:"active"`
}

func (c *RedisCatalogCache) key(cat entity.Catalog) string {
	return c.keyPrefix + string(cat)
}

func (c *RedisCatalogCache) Get(ctx context.Context, cat entity.Catalog) ([]*entity.CatalogEntry, bool, error) {
	raw, err := c.client.Get(ctx, c.key(cat)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: leer %s: %w", cat, err)
	}
	var stored []cachedEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		// valor corrupto: se trata como ausente
		_ = c.client.Del(ctx, c.key(cat)).Err()
		return nil, false, nil
	}
	out := make([]*entity.CatalogEntry, 0, len(stored))
	for _, s := range stored {
		out = append(out, &entity.CatalogEntry{
			Catalog: s.Catalog, ID: s.ID, Name: s.Name, Contact: s.Contact, Email: s.Email,
			DocumentType: s.DocumentType, DocumentNumber: s.DocumentNumber, Price: s.Price, Active: s.Active,
		})
	}
	return out, true, nil
}

func (c *RedisCatalogCache) Set(ctx context.Context, cat entity.Catalog, entries []*entity.CatalogEntry, ttl time.Duration) error {
	stored := make([]cachedEntry, 0, len(entries))
	for _, e := range entries {
		stored = append(stored, cachedEntry{
			Catalog: e.Catalog, ID: e.ID, Name: e.Name, Contact: e.Contact, Email: e.Email,
			DocumentType: e.DocumentType, DocumentNumber: e.DocumentNumber, Price: e.Price, Active: e.Active,
		})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("cache: serializar %s: %w", cat, err)
	}
	if err := c.client.Set(ctx, c.key(cat), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache: guardar %s: %w", cat, err)
	}
	return nil
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context, cat entity.Catalog) error {
	if err := c.client.Del(ctx, c.key(cat)).Err(); err != nil {
		return fmt.Errorf("cache: invalidar %s: %w", cat, err)
	}
	return nil
}

// Close cierra el cliente de Redis.
func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}
