package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	Cost = bcrypt.MinCost
	defer func() { Cost = bcrypt.DefaultCost }()

	hash, err := HashPassword("rose-petal")
	require.NoError(t, err)
	assert.NotEqual(t, "rose-petal", hash)
	assert.True(t, CheckPassword(hash, "rose-petal"))
	assert.False(t, CheckPassword(hash, "Rose-petal"))
}

func TestSecretEqual(t *testing.T) {
	assert.True(t, SecretEqual("admin123", "admin123"))
	assert.False(t, SecretEqual("admin123", "admin12"))
	assert.False(t, SecretEqual("", ""))
}

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := []byte("session-secret")

	token, err := SignSession(secret, "sid-1", time.Hour)
	require.NoError(t, err)

	sid, err := ParseSession(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)

	_, err = ParseSession([]byte("other-secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := SignSession(secret, "sid-2", -time.Minute)
	require.NoError(t, err)
	_, err = ParseSession(secret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseSession(secret, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityContext(t *testing.T) {
	assert.Equal(t, Identity{}, FromContext(context.Background()))
	assert.Nil(t, Identity{}.UserRef())

	ctx := WithIdentity(context.Background(), Identity{UserID: 9, Admin: true})
	id := FromContext(ctx)
	assert.True(t, id.Authenticated())
	assert.True(t, id.Admin)
	require.NotNil(t, id.UserRef())
	assert.EqualValues(t, 9, *id.UserRef())
}
