package lk

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/h2non/gock"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/ladeklubben-cli/pricing"
	"github.com/denysvitali/ladeklubben-cli/schedule"
)

func newTestClient(t *testing.T, token string) *Client {
	t.Helper()
	c, err := New(&Config{})
	require.NoError(t, err)
	c.setToken(token, 0)
	return c
}

func TestHashPassword(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", HashPassword(""))
	assert.Len(t, HashPassword("secret"), 32)
}

func TestClient_Login(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Post("/user/login").
		JSON(loginRequest{Email: "user@example.com", Password: HashPassword("pass")}).
		Reply(200).
		JSON(map[string]any{"access_token": "abc", "expires": 1700000000})

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	c, err := New(&Config{})
	require.NoError(t, err)
	c.SetConfigPath(configPath)

	err = c.Login(context.Background(), "user@example.com", "pass")
	require.NoError(t, err)
	assert.Equal(t, "abc", c.getToken())
	assert.True(t, c.IsAuthenticated())

	saved, err := GetConfigFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "abc", saved.Token)
	assert.Equal(t, int64(1700000000), saved.TokenExpires)
	assert.True(t, gock.IsDone())
}

func TestClient_LoginRequiresCredentials(t *testing.T) {
	c := newTestClient(t, "")
	err := c.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_LoginRejected(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Post("/user/login").
		Reply(404).
		JSON(map[string]any{"detail": "Invalid password"})

	c := newTestClient(t, "")
	err := c.Login(context.Background(), "user@example.com", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Invalid password", apiErr.Detail)
	assert.False(t, c.IsAuthenticated())
}

func TestClient_Logout(t *testing.T) {
	c := newTestClient(t, "abc")
	require.NoError(t, c.Logout())
	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, c.GetConfig().Token)
}

func TestClient_GetPublicCharger(t *testing.T) {
	defer gock.Off()
	log.SetLevel(logrus.DebugLevel)
	token := "foo"

	gock.New(Backend).
		Get("/chargers/public").
		MatchHeader("Authorization", "Bearer "+token).
		Reply(200).
		BodyString(`{
			"updatetime": 1700000000,
			"upd": [
				{
					"stationid": "other",
					"prices": {"nominal": 2, "minimum": 1, "fallback": 3, "valuta": "DKK", "follow_spot": 0},
					"location": {"city": "Aarhus", "latitude": 56.15, "longitude": 10.2},
					"openhours": [],
					"type": {},
					"connector": "Charging",
					"qr": ""
				},
				{
					"stationid": "1234",
					"prices": {"nominal": 1.5, "minimum": 0.5, "fallback": 3, "valuta": "DKK", "follow_spot": 1},
					"location": {"brief": "Home", "address": "Vej 1", "city": "Odense", "zip": "5000", "latitude": 55.4, "longitude": 10.39},
					"openhours": [{"days": [0, 1, 2, 3, 4, 5, 6], "start": 0, "interval": 10080}],
					"type": {"brand": "Easee", "power": "22kW"},
					"connector": "Available",
					"online": [1700000000, true],
					"qr": "LK1234",
					"energyprices": {"Costprice": [100, 120], "start": 1700000000}
				}
			]
		}`)

	c := newTestClient(t, token)
	charger, err := c.GetPublicCharger(context.Background(), "1234")
	require.NoError(t, err)

	assert.Equal(t, "Odense", charger.City())
	assert.True(t, charger.IsAvailable())
	assert.Equal(t, pricing.FlexBool(true), charger.Prices.FollowSpot)
	assert.Equal(t, "Always Open", charger.OpeningHours())
	require.NotNil(t, charger.Online)
	assert.True(t, charger.Online.Online)
	assert.Equal(t, int64(1700000000), charger.Online.Since)
	assert.Equal(t, &pricing.Spot{CurrentCost: 100}, charger.EnergyPrices.Current())
	assert.Equal(t, "Easee", charger.Type.Brand)
}

func TestClient_GetPublicChargerNotFound(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/chargers/public").
		Reply(200).
		JSON(map[string]any{"updatetime": 1, "upd": []any{}})

	c := newTestClient(t, "foo")
	_, err := c.GetPublicCharger(context.Background(), "1234")
	assert.ErrorIs(t, err, ErrChargerNotFound)
}

func TestClient_Claim(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Put("/cp/1234/claim").
		MatchHeader("Authorization", "Bearer foo").
		Reply(200).
		JSON(map[string]any{"claimTimeout": 60})
	gock.New(Backend).
		Put("/cp/1234/claim").
		Reply(200).
		JSON(map[string]any{"claimTimeout": 0})

	c := newTestClient(t, "foo")

	previous := log.ReplaceHooks(make(logrus.LevelHooks))
	defer log.ReplaceHooks(previous)
	hook := logtest.NewLocal(log)

	timeout, err := c.Claim(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, 60, timeout)
	for _, entry := range hook.AllEntries() {
		assert.Greater(t, entry.Level, logrus.InfoLevel, "claims are reported by the session controller: %s", entry.Message)
	}

	_, err = c.Claim(context.Background(), "1234")
	assert.ErrorIs(t, err, ErrClaimRejected)
}

func TestClient_StartStopCharge(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).Put("/cp/1234/startcharge").Reply(204)
	gock.New(Backend).Put("/cp/1234/stopcharge").Reply(200).JSON(map[string]any{"ok": true})
	gock.New(Backend).
		Put("/cp/1234/startcharge").
		Reply(400).
		JSON(map[string]any{"detail": "No car connected"})

	c := newTestClient(t, "foo")
	require.NoError(t, c.StartCharge(context.Background(), "1234"))
	require.NoError(t, c.StopCharge(context.Background(), "1234"))

	err := c.StartCharge(context.Background(), "1234")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No car connected", apiErr.Detail)
	assert.False(t, errors.Is(err, ErrNotAuthenticated))
}

func TestClient_UnauthorizedWithoutCredentials(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/cs/1234/activeguest").
		Reply(401).
		JSON(map[string]any{"detail": "Not authenticated"})

	c := newTestClient(t, "")
	_, err := c.GetActiveSession(context.Background(), "1234")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_GetActiveSession(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/cs/1234/activeguest").
		Reply(200).
		JSON(map[string]any{"consumption": 3.2, "Cost": "12.50", "power": 11, "Started": 1700000000})

	c := newTestClient(t, "foo")
	session, err := c.GetActiveSession(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, &ActiveSession{Consumption: 3.2, Cost: "12.50", Power: 11, Started: 1700000000}, session)
}

func TestClient_ScheduleCRUD(t *testing.T) {
	defer gock.Off()

	org := schedule.Window{Days: []int{0, 1}, Start: 480, Interval: 60}
	updated := schedule.Window{Days: []int{0, 1}, Start: 510, Interval: 60}

	gock.New(Backend).
		Get("/schedule/1234/alwayson").
		Reply(200).
		JSON([]schedule.Window{org})
	gock.New(Backend).
		Patch("/schedule/1234/alwayson").
		JSON(org).
		Reply(204)
	gock.New(Backend).
		Put("/schedule/1234/alwayson").
		JSON(map[string]any{"schedule_new": updated, "schedule_org": org}).
		Reply(204)
	gock.New(Backend).
		Put("/schedule/1234/alwayson/rm").
		JSON(updated).
		Reply(204)

	c := newTestClient(t, "foo")
	ctx := context.Background()

	windows, err := c.GetSchedule(ctx, "1234", schedule.KindAlwaysOn)
	require.NoError(t, err)
	assert.Equal(t, []schedule.Window{org}, windows)

	require.NoError(t, c.AddSchedule(ctx, "1234", schedule.KindAlwaysOn, org))
	require.NoError(t, c.UpdateSchedule(ctx, "1234", schedule.KindAlwaysOn, updated, org))
	require.NoError(t, c.DeleteSchedule(ctx, "1234", schedule.KindAlwaysOn, updated))
	assert.True(t, gock.IsDone())
}

func TestClient_ListPrice(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/listprice/1234").
		Reply(200).
		JSON(map[string]any{"nominal": 2, "minimum": 1.1, "fallback": 3.33, "valuta": "DKK", "follow_spot": true})
	gock.New(Backend).
		Put("/listprice/1234").
		JSON(map[string]any{"nominal": 2.5, "minimum": 1.1, "fallback": 3.33, "valuta": "DKK", "follow_spot": false}).
		Reply(204)

	c := newTestClient(t, "foo")
	lp, err := c.GetListPrice(context.Background(), "1234")
	require.NoError(t, err)
	assert.True(t, bool(lp.FollowSpot))
	assert.Equal(t, 3.33, lp.Fallback)

	lp.Nominal = 2.5
	lp.FollowSpot = false
	require.NoError(t, c.PutListPrice(context.Background(), "1234", *lp))
	assert.True(t, gock.IsDone())
}

func TestClient_Notifications(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/cp/1234/notification_setup").
		Reply(200).
		JSON(map[string]any{
			"onBegin": []any{[]any{"a@example.com", 1}},
			"onEnd":   []any{[]any{"a@example.com", 0}, []any{"b@example.com", 1}},
		})
	gock.New(Backend).
		Put("/cp/1234/notification_setup").
		JSON(map[string]any{"email": "a@example.com", "eventType": "onEnd", "enabled": true}).
		Reply(204)
	gock.New(Backend).
		Delete("/cp/1234/notification_setup").
		JSON(map[string]any{"email": "b@example.com", "eventType": "onBegin", "enabled": 0}).
		Reply(204)

	c := newTestClient(t, "foo")
	ctx := context.Background()

	setup, err := c.GetNotificationSetup(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, []NotificationEntry{{Email: "a@example.com", Enabled: 1}}, setup.OnBegin)
	assert.Equal(t, []NotificationEntry{{Email: "a@example.com", Enabled: 0}, {Email: "b@example.com", Enabled: 1}}, setup.OnEnd)

	require.NoError(t, c.PutNotification(ctx, "1234", "a@example.com", EventOnEnd, true))
	require.NoError(t, c.DeleteNotification(ctx, "1234", "b@example.com", EventOnBegin))
	assert.True(t, gock.IsDone())
}

func TestClient_OwnedChargerInfo(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).Get("/user/chargepoints").Reply(200).JSON([]string{"1234", "5678"})
	gock.New(Backend).Get("/cp/1234/info").Reply(200).JSON(map[string]any{"brief": "Garage", "city": "Odense"})
	gock.New(Backend).Get("/cp/1234/chargestate").Reply(200).JSON(map[string]any{"is_charging": 0, "connector_occupied": 1, "online": []any{1700000000, true}})
	gock.New(Backend).Get("/cp/1234/valid").Reply(200).JSON(map[string]any{"is_valid": true})

	c := newTestClient(t, "foo")
	ctx := context.Background()

	ids, err := c.GetChargepoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1234", "5678"}, ids)

	info, err := c.GetChargerInfo(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, "Garage", info.Brief)

	state, err := c.GetChargeState(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, "EV Connected", state.Status())

	valid, err := c.GetValidity(ctx, "1234")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestClient_GetGuestGroups(t *testing.T) {
	defer gock.Off()

	gock.New(Backend).
		Get("/user/information").
		Reply(200).
		BodyString(`{
			"userinfo": {"name": "Test", "email": "user@example.com"},
			"guestgroups": {
				"DISCOUNT": {"stations": ["A"], "A": 20},
				"FLAT": {"stations": ["B"]},
				"FREE": {"stations": []}
			}
		}`)

	c := newTestClient(t, "foo")
	groups, err := c.GetGuestGroups(context.Background())
	require.NoError(t, err)
	require.NotNil(t, groups)
	assert.Equal(t, []string{"A"}, groups.Discount.Stations)
	assert.Equal(t, 20.0, groups.Discount.Percent["A"])
	assert.Equal(t, []string{"B"}, groups.Flat.Stations)
}
