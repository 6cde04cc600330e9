package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskpulse/pkg/httpcontext"
)

const testSecret = "s3cret"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func call(token string) (*fasthttp.RequestCtx, string) {
	var actor string
	handler := JWTAuth(testSecret, "taskpulse", nil)(func(ctx *fasthttp.RequestCtx) {
		actor = httpcontext.ActorID(ctx)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	ctx := &fasthttp.RequestCtx{}
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	handler(ctx)
	return ctx, actor
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token := sign(t, jwt.MapClaims{"user_id": "lead-1", "iss": "taskpulse", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)

	ctx, actor := call(token)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "lead-1", actor)
}

func TestJWTAuthFallsBackToSubject(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "bot", "iss": "taskpulse"}, testSecret)

	_, actor := call(token)
	assert.Equal(t, "bot", actor)
}

func TestJWTAuthRejects(t *testing.T) {
	cases := map[string]string{
		"missing":      "",
		"wrong secret": sign(t, jwt.MapClaims{"user_id": "u", "iss": "taskpulse"}, "other"),
		"expired":      sign(t, jwt.MapClaims{"user_id": "u", "iss": "taskpulse", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret),
		"wrong issuer": sign(t, jwt.MapClaims{"user_id": "u", "iss": "someone"}, testSecret),
		"no actor":     sign(t, jwt.MapClaims{"iss": "taskpulse"}, testSecret),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, actor := call(token)
			assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
			assert.Empty(t, actor)
			assert.Contains(t, string(ctx.Response.Body()), "UNAUTHORIZED")
		})
	}
}
