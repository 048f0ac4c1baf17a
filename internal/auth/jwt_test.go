package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const testSecret = "test-jwt-secret"

func sellerClaims() Claims {
	return Claims{UserID: uuid.New(), Username: "aziz", Role: domain.RoleSeller, Scope: "shop-1"}
}

// signRaw signs arbitrary wire claims, bypassing GenerateToken's defaults.
func signRaw(t *testing.T, method jwt.SigningMethod, key any, tc tokenClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, tc).SignedString(key)
	require.NoError(t, err)
	return signed
}

func wireClaims(mutate func(*tokenClaims)) tokenClaims {
	now := time.Now()
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   uuid.NewString(),
		Username: "owner",
		Role:     string(domain.RoleAdmin),
		Scope:    "shop-1",
	}
	if mutate != nil {
		mutate(&tc)
	}
	return tc
}

func TestGenerateToken_RoundTripsClaimsAndCapabilities(t *testing.T) {
	want := sellerClaims()

	token, err := GenerateToken(want, testSecret, 12*time.Hour)
	require.NoError(t, err)

	got, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	actor := got.Actor()
	assert.Equal(t, "aziz", actor.Username)
	assert.True(t, actor.Can(domain.CapSell))
	assert.False(t, actor.Can(domain.CapSetExchangeRate))
}

func TestValidateToken_Rejections(t *testing.T) {
	valid, err := GenerateToken(sellerClaims(), testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(sellerClaims(), testSecret, -time.Hour)
	require.NoError(t, err)

	hs := jwt.SigningMethodHS256
	key := []byte(testSecret)

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErrIs error
	}{
		{name: "expired", token: expired, secret: testSecret, wantErrIs: jwt.ErrTokenExpired},
		{name: "wrong secret", token: valid, secret: "other", wantErrIs: jwt.ErrTokenSignatureInvalid},
		{name: "malformed", token: "not.a.jwt", secret: testSecret, wantErrIs: jwt.ErrTokenMalformed},
		{name: "empty", token: "", secret: testSecret, wantErrIs: jwt.ErrTokenMalformed},
		{
			name:      "foreign issuer",
			token:     signRaw(t, hs, key, wireClaims(func(c *tokenClaims) { c.Issuer = "someone-else" })),
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenInvalidIssuer,
		},
		{
			name:      "issued in the future",
			token:     signRaw(t, hs, key, wireClaims(func(c *tokenClaims) { c.IssuedAt = jwt.NewNumericDate(time.Now().Add(time.Hour)) })),
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenUsedBeforeIssued,
		},
		{
			name:      "none algorithm",
			token:     signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, wireClaims(nil)),
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenUnverifiable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateToken(tc.token, tc.secret)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)
		})
	}
}

func TestValidateToken_RejectsIncompleteClaims(t *testing.T) {
	key := []byte(testSecret)
	tests := []struct {
		name   string
		mutate func(*tokenClaims)
	}{
		{name: "unknown role", mutate: func(c *tokenClaims) { c.Role = "OWNER" }},
		{name: "bad user id", mutate: func(c *tokenClaims) { c.UserID = "42" }},
		{name: "no scope", mutate: func(c *tokenClaims) { c.Scope = "" }},
		{name: "no username", mutate: func(c *tokenClaims) { c.Username = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token := signRaw(t, jwt.SigningMethodHS256, key, wireClaims(tc.mutate))
			_, err := ValidateToken(token, testSecret)
			require.Error(t, err)
		})
	}
}
