// Package restapi adaptador de persistencia contra la API REST remota
// (/compras, /ventas, /pedidos, /ordenesproduccion, /fichastecnicas y catálogos).
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

const maxBodyBytes = 4 << 20

// Client cliente HTTP de la API remota. Reenvía el token del usuario y la
// clave de idempotencia que vengan en el contexto.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente. baseURL suele ser "http://localhost:3000/api".
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// errorBody formatos de error observados en la API remota.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Mensaje string `json:"mensaje"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.Message, b.Error, b.Mensaje} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// do ejecuta la petición. body nil = sin cuerpo; out nil = se descarta la respuesta.
// Todo error se devuelve como *domain.PersistenceError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &domain.PersistenceError{Err: fmt.Errorf("restapi: serializar cuerpo: %w", err)}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.PersistenceError{Err: fmt.Errorf("restapi: crear request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := repository.AuthToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key := repository.IdempotencyKey(ctx); key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("API remota no disponible")
		return &domain.PersistenceError{Err: fmt.Errorf("restapi: %s %s: %w", method, path, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.PersistenceError{Status: resp.StatusCode, Err: fmt.Errorf("restapi: leer respuesta: %w", err)}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		perr := &domain.PersistenceError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			perr.Message = eb.text()
		}
		if resp.StatusCode == http.StatusNotFound {
			perr.Err = domain.ErrNotFound
		}
		c.log.Warn().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
			Str("detail", perr.Message).Msg("API remota respondió con error")
		return perr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &domain.PersistenceError{Status: resp.StatusCode, Err: fmt.Errorf("restapi: deserializar respuesta: %w", err)}
	}
	return nil
}
