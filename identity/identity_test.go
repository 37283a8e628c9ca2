package identity

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	userID, token, err := iss.Issue()
	require.NoError(t, err)
	_, err = uuid.Parse(userID)
	require.NoError(t, err)

	got, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	other, _, err := iss.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, userID, other)
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	_, token, err := iss.Issue()
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, expired, err := NewIssuer("s3cret", -time.Minute).Issue()
	require.NoError(t, err)
	_, err = iss.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  issuerName,
		Subject: "alice",
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = iss.Parse(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNopRegistry(t *testing.T) {
	assert.NoError(t, NopRegistry{}.Touch(context.Background(), "anyone"))
}

func TestRedisRegistryUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	reg := NewRedisRegistry(rdb, time.Hour)
	assert.Error(t, reg.Touch(context.Background(), "u1"))
	assert.Equal(t, "user:u1:seen", seenKey("u1"))
}
