package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Hour)

	tok, err := iss.Issue(&User{ID: 42, Username: "mario"})
	require.NoError(t, err)

	id, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestToken_Rejects(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Hour)
	tok, err := iss.Issue(&User{ID: 7})
	require.NoError(t, err)

	other := NewTokenIssuer("other-secret", time.Hour)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(&User{ID: 7})
	require.NoError(t, err)
	_, err = iss.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("lemon")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "lemon"))
	assert.False(t, CheckPassword(h, "lime"))
}
