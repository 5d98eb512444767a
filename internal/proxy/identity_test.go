package proxy

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityFromToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u-1",
		"email": "ops@example.com",
		"roles": []string{"viewer"},
	})
	raw, err := token.SignedString([]byte("whatever"))
	require.NoError(t, err)

	// The proxy never verifies signatures, so any signing key works.
	id, ok := identityFromToken(raw)
	require.True(t, ok)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, "ops@example.com", id.Email)
	assert.Equal(t, []string{"viewer"}, id.Roles)
}

func TestIdentityFromTokenRolesAsString(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-2",
		"roles":   "admin,editor",
	})
	raw, err := token.SignedString([]byte("k"))
	require.NoError(t, err)

	id, ok := identityFromToken(raw)
	require.True(t, ok)
	assert.Equal(t, "u-2", id.UserID)
	assert.Equal(t, []string{"admin", "editor"}, id.Roles)
}

func TestIdentityFromMalformedToken(t *testing.T) {
	_, ok := identityFromToken("not.a.jwt")
	assert.False(t, ok)

	_, ok = identityFromToken("")
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Basic dXNlcg==", "", false},
		{"", "", false},
		{"Bearer ", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		if tt.ok {
			assert.Equal(t, tt.token, token)
		}
	}
}
