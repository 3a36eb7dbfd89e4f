package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseRoundTrip(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "reelvault", Duration: time.Hour}

	token, exp, err := ts.Sign("client-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.ClientID)
	assert.Equal(t, "reelvault", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a := TokenService{Secret: []byte("secret-a"), Issuer: "reelvault", Duration: time.Hour}
	b := TokenService{Secret: []byte("secret-b"), Issuer: "reelvault", Duration: time.Hour}

	token, _, err := a.Sign("client-1")
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "reelvault", Duration: -time.Minute}

	token, _, err := ts.Sign("client-1")
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	h := NewHandler(hash, TokenService{Secret: []byte("s"), Issuer: "reelvault", Duration: time.Hour})
	assert.True(t, h.Enabled())
	assert.False(t, NewHandler("", TokenService{}).Enabled())
}
