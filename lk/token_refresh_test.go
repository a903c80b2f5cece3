package lk

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"
)

func TestTokenRefreshOn401(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/user/information").
		MatchHeader("Authorization", "Bearer old-invalid-token").
		Reply(401).
		JSON(map[string]any{"detail": "Invalid or expired token"})

	gock.New(Backend).
		Post("/user/login").
		JSON(loginRequest{
			Email:    "test@example.com",
			Password: HashPassword("password123"),
		}).
		Reply(200).
		JSON(tokenResponse{AccessToken: "new-fresh-token", Expires: 1900000000})

	gock.New(Backend).
		Get("/user/information").
		MatchHeader("Authorization", "Bearer new-fresh-token").
		Reply(200).
		JSON(map[string]any{"userinfo": map[string]any{"email": "test@example.com"}})

	client, err := New(&Config{
		Username: "test@example.com",
		Password: "password123",
		Token:    "old-invalid-token",
	})
	require.NoError(t, err)
	client.setToken("old-invalid-token", 0)

	info, err := client.GetUserInformation(context.Background())
	require.NoError(t, err, "request should succeed after logging in again")
	assert.Equal(t, "test@example.com", info.UserInfo.Email)
	assert.Equal(t, "new-fresh-token", client.getToken())
	assert.True(t, gock.IsDone(), "pending mocks: %v", gock.Pending())
}

func TestTokenRefreshFailsGracefully(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/user/information").
		MatchHeader("Authorization", "Bearer old-invalid-token").
		Reply(401).
		JSON(map[string]any{"detail": "Invalid or expired token"})

	gock.New(Backend).
		Post("/user/login").
		Reply(404).
		JSON(map[string]any{"detail": "Invalid password"})

	client, err := New(&Config{
		Username: "test@example.com",
		Password: "wrong-password",
		Token:    "old-invalid-token",
	})
	require.NoError(t, err)
	client.setToken("old-invalid-token", 0)

	_, err = client.GetUserInformation(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestExpiredTokenIsRefreshedBeforeRequest(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/user/tokenrefresh").
		MatchHeader("Authorization", "Bearer expiring-token").
		Reply(200).
		JSON(tokenResponse{AccessToken: "refreshed-token", Expires: 1900000000})

	gock.New(Backend).
		Get("/user/chargepoints").
		MatchHeader("Authorization", "Bearer refreshed-token").
		Reply(200).
		JSON([]string{"1234"})

	client, err := New(&Config{})
	require.NoError(t, err)
	client.SetClock(clockwork.NewFakeClockAt(time.Unix(1800000000, 0)))
	client.setToken("expiring-token", 1700000000)

	ids, err := client.GetChargepoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1234"}, ids)
	assert.Equal(t, "refreshed-token", client.getToken())
	assert.True(t, gock.IsDone())
}

func TestRefreshAttemptsAreLimited(t *testing.T) {
	clock := clockwork.NewFakeClock()
	client, err := New(&Config{Username: "u", Password: "p"})
	require.NoError(t, err)
	client.SetClock(clock)

	client.refreshAttempts = int64(MaxRefreshAttempts)
	err = client.refreshTokenIfNeeded(context.Background())
	assert.ErrorContains(t, err, "exceeded maximum refresh attempts")

	client.refreshAttempts = 1
	client.lastRefreshTime = clock.Now()
	err = client.refreshTokenIfNeeded(context.Background())
	assert.ErrorContains(t, err, "too many recent attempts")
}
