package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() TokenService {
	return TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "animehub",
		Duration: time.Hour,
	}
}

func TestSignAndParse(t *testing.T) {
	ts := testService()

	token, exp, err := ts.Sign("user-1", "viewer@example.com", false)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "viewer@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "animehub", claims.Issuer)
}

func TestParse_WrongSecret(t *testing.T) {
	ts := testService()

	token, _, err := ts.Sign("user-1", "viewer@example.com", true)
	require.NoError(t, err)

	other := TokenService{Secret: []byte("other-secret"), Issuer: "animehub", Duration: time.Hour}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	ts := testService()
	ts.Duration = -time.Minute

	token, _, err := ts.Sign("user-1", "viewer@example.com", false)
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.Error(t, err)
}

func TestParse_RejectsUnexpectedMethod(t *testing.T) {
	ts := testService()

	// alg=none tokens must never verify
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ts.Parse(unsigned)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2gohome")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2gohome", hash)

	assert.True(t, CheckPassword(hash, "hunter2gohome"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
