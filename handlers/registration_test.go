package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medverify/verification-services/internal/appsession"
	"github.com/medverify/verification-services/internal/hashing"
	"github.com/medverify/verification-services/internal/tokens"
)

type stubOracle struct {
	valid    map[string]bool
	redeemed []string
}

func (o *stubOracle) IsValid(ctx context.Context, code string) (bool, error) {
	return o.valid[code], nil
}

func (o *stubOracle) Redeem(ctx context.Context, code string) error {
	o.redeemed = append(o.redeemed, code)
	delete(o.valid, code)
	return nil
}

func newRegistrationRouter(oracle appsession.TeleTanOracle) (*gin.Engine, *appsession.Service) {
	gin.SetMode(gin.TestMode)
	svc := appsession.NewService(appsession.NewMemoryRepository(), oracle)
	r := gin.New()
	NewRegistrationHandler(svc).Register(r.Group("/version/v1"))
	return r, svc
}

func postRegistration(r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/version/v1/registrationToken", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueTokenForGuid(t *testing.T) {
	r, _ := newRegistrationRouter(nil)
	guidHash := hashing.Hash("some-guid")

	w := postRegistration(r, RegistrationTokenRequest{Key: guidHash, KeyType: "GUID"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp RegistrationTokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, tokens.IsWellFormed(resp.RegistrationToken))
}

func TestIssueTokenGuidConflict(t *testing.T) {
	r, _ := newRegistrationRouter(nil)
	guidHash := hashing.Hash("some-guid")

	first := postRegistration(r, RegistrationTokenRequest{Key: guidHash, KeyType: "GUID"})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postRegistration(r, RegistrationTokenRequest{Key: guidHash, KeyType: "GUID"})
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestIssueTokenRejectsMalformedGuid(t *testing.T) {
	r, _ := newRegistrationRouter(nil)
	w := postRegistration(r, RegistrationTokenRequest{Key: "not-a-digest", KeyType: "GUID"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueTokenRejectsUnknownKeyType(t *testing.T) {
	r, _ := newRegistrationRouter(nil)
	w := postRegistration(r, RegistrationTokenRequest{Key: hashing.Hash("x"), KeyType: "PASSPORT"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueTokenRejectsMissingFields(t *testing.T) {
	r, _ := newRegistrationRouter(nil)
	w := postRegistration(r, map[string]string{"key": hashing.Hash("x")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueTokenForTeleTan(t *testing.T) {
	oracle := &stubOracle{valid: map[string]bool{"R3G7K2M9QX": true}}
	r, svc := newRegistrationRouter(oracle)

	w := postRegistration(r, RegistrationTokenRequest{Key: "R3G7K2M9QX", KeyType: "TELETAN"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, oracle.redeemed, "R3G7K2M9QX")

	used, err := svc.ExistsForTeleTan(context.Background(), "R3G7K2M9QX")
	require.NoError(t, err)
	assert.True(t, used)
}

func TestIssueTokenRejectsUnknownTeleTan(t *testing.T) {
	oracle := &stubOracle{valid: map[string]bool{}}
	r, _ := newRegistrationRouter(oracle)

	w := postRegistration(r, RegistrationTokenRequest{Key: "R3G7K2M9QX", KeyType: "TELETAN"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
