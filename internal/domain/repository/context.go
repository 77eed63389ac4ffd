package repository

import "context"

type ctxKey int

const (
	ctxIdempotencyKey ctxKey = iota
	ctxAuthToken
)

// WithIdempotencyKey asocia la clave de idempotencia de un guardado al contexto.
// Los adaptadores que la soportan la envían a la persistencia.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxIdempotencyKey, key)
}

// IdempotencyKey clave de idempotencia del contexto, si existe.
func IdempotencyKey(ctx context.Context) string {
	v, _ := ctx.Value(ctxIdempotencyKey).(string)
	return v
}

// WithAuthToken token del usuario de la consola, reenviado a la API remota.
func WithAuthToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxAuthToken, token)
}

// AuthToken token del contexto, si existe.
func AuthToken(ctx context.Context) string {
	v, _ := ctx.Value(ctxAuthToken).(string)
	return v
}
