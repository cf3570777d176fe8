package auth

import "context"

type ctxKey struct{}

// WithClaims anexa os claims autenticados ao contexto da requisição
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext devolve os claims do usuário autenticado, se houver
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// UserID atalho para o id do usuário autenticado
func UserID(ctx context.Context) string {
	if c, ok := FromContext(ctx); ok {
		return c.UserID
	}
	return ""
}
