package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medverify/verification-services/internal/teletan"
	"github.com/medverify/verification-services/pkg/middleware"
)

type staticToken struct {
	claims map[string]interface{}
}

func (t *staticToken) Claims(v interface{}) error {
	b, _ := json.Marshal(t.claims)
	return json.Unmarshal(b, v)
}

type staticVerifier struct {
	token middleware.Token
	err   error
}

func (v *staticVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.token, nil
}

func newTeleTanRouter(t *testing.T, ver middleware.Verifier) (*gin.Engine, *teletan.Service) {
	t.Helper()
	m, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := teletan.NewService(teletan.NewRedisStore(client, ""), 0)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewTeleTanHandler(svc, ver, "c19hotline").Register(r.Group("/version/v1"))
	return r, svc
}

func mintTeleTan(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/version/v1/tan/teletan", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func hotlineClaims() map[string]interface{} {
	return map[string]interface{}{
		"sub": "operator-1",
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"c19hotline"},
		},
	}
}

func TestMintTeleTan(t *testing.T) {
	ver := &staticVerifier{token: &staticToken{claims: hotlineClaims()}}
	r, svc := newTeleTanRouter(t, ver)

	w := mintTeleTan(r, "Bearer operator-token")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp TeleTanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, teletan.IsWellFormed(resp.Value))

	// the minted code is immediately redeemable
	ok, err := svc.IsValid(context.Background(), resp.Value)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMintTeleTanRequiresAuth(t *testing.T) {
	ver := &staticVerifier{err: errors.New("invalid signature")}
	r, _ := newTeleTanRouter(t, ver)

	w := mintTeleTan(r, "Bearer bogus")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = mintTeleTan(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMintTeleTanRequiresRole(t *testing.T) {
	ver := &staticVerifier{token: &staticToken{claims: map[string]interface{}{"sub": "operator-1"}}}
	r, _ := newTeleTanRouter(t, ver)

	w := mintTeleTan(r, "Bearer operator-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
