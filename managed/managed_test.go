package managed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/pricing"
	"github.com/denysvitali/ladeklubben-cli/schedule"
)

type notificationCall struct {
	email   string
	event   lk.EventType
	enabled bool
	deleted bool
}

type fakeAPI struct {
	mu sync.Mutex

	ids       []string
	infos     map[string]*lk.LocationInfo
	states    map[string]*lk.ChargeState
	listPrice *pricing.PriceInfo
	setup     *lk.NotificationSetup
	windows   map[schedule.Kind][]schedule.Window

	failInfo         map[string]error
	failNotification error
	failListPrice    error

	putPrices     []pricing.PriceInfo
	notifications []notificationCall
}

func (f *fakeAPI) GetChargepoints(context.Context) ([]string, error) {
	return f.ids, nil
}

func (f *fakeAPI) GetChargerInfo(_ context.Context, id string) (*lk.LocationInfo, error) {
	if err := f.failInfo[id]; err != nil {
		return nil, err
	}
	return f.infos[id], nil
}

func (f *fakeAPI) GetChargeState(_ context.Context, id string) (*lk.ChargeState, error) {
	return f.states[id], nil
}

func (f *fakeAPI) GetValidity(_ context.Context, id string) (bool, error) {
	return f.states[id] != nil, nil
}

func (f *fakeAPI) GetListPrice(context.Context, string) (*pricing.PriceInfo, error) {
	return f.listPrice, nil
}

func (f *fakeAPI) PutListPrice(_ context.Context, _ string, lp pricing.PriceInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putPrices = append(f.putPrices, lp)
	return f.failListPrice
}

func (f *fakeAPI) GetNotificationSetup(context.Context, string) (*lk.NotificationSetup, error) {
	return f.setup, nil
}

func (f *fakeAPI) PutNotification(_ context.Context, _ string, email string, event lk.EventType, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, notificationCall{email: email, event: event, enabled: enabled})
	return f.failNotification
}

func (f *fakeAPI) DeleteNotification(_ context.Context, _ string, email string, event lk.EventType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, notificationCall{email: email, event: event, deleted: true})
	return f.failNotification
}

func (f *fakeAPI) GetSchedule(_ context.Context, _ string, kind schedule.Kind) ([]schedule.Window, error) {
	return f.windows[kind], nil
}

func (f *fakeAPI) AddSchedule(context.Context, string, schedule.Kind, schedule.Window) error {
	return nil
}

func (f *fakeAPI) UpdateSchedule(context.Context, string, schedule.Kind, schedule.Window, schedule.Window) error {
	return nil
}

func (f *fakeAPI) DeleteSchedule(context.Context, string, schedule.Kind, schedule.Window) error {
	return nil
}

func TestFormatNotificationSetup(t *testing.T) {
	setup := &lk.NotificationSetup{
		OnBegin: []lk.NotificationEntry{{Email: "a@example.com", Enabled: 1}, {Email: "b@example.com", Enabled: 0}},
		OnEnd:   []lk.NotificationEntry{{Email: "c@example.com", Enabled: 1}, {Email: "a@example.com", Enabled: 2}},
	}

	assert.Equal(t, []Notification{
		{Email: "a@example.com", OnBegin: true, OnEnd: false},
		{Email: "b@example.com", OnBegin: false, OnEnd: false},
		{Email: "c@example.com", OnBegin: false, OnEnd: true},
	}, FormatNotificationSetup(setup))

	assert.Empty(t, FormatNotificationSetup(nil))
	assert.Empty(t, FormatNotificationSetup(&lk.NotificationSetup{}))
}

func loadedCharger(t *testing.T, api *fakeAPI) *Charger {
	t.Helper()
	c := NewCharger(api, "1234")
	require.NoError(t, c.LoadNotifications(context.Background()))
	return c
}

func TestCharger_AddOrUpdateNotification(t *testing.T) {
	api := &fakeAPI{setup: &lk.NotificationSetup{
		OnBegin: []lk.NotificationEntry{{Email: "a@example.com", Enabled: 1}, {Email: "b@example.com", Enabled: 1}},
	}}
	c := loadedCharger(t, api)

	require.NoError(t, c.AddOrUpdateNotification(context.Background(), "a@example.com", false, true))
	assert.Equal(t, []Notification{
		{Email: "b@example.com", OnBegin: true},
		{Email: "a@example.com", OnEnd: true},
	}, c.Notifications())

	assert.ElementsMatch(t, []notificationCall{
		{email: "a@example.com", event: lk.EventOnBegin, enabled: false},
		{email: "a@example.com", event: lk.EventOnEnd, enabled: true},
	}, api.notifications)
}

func TestCharger_AddOrUpdateNotificationRollback(t *testing.T) {
	api := &fakeAPI{setup: &lk.NotificationSetup{
		OnBegin: []lk.NotificationEntry{{Email: "a@example.com", Enabled: 1}},
	}}
	c := loadedCharger(t, api)
	before := c.Notifications()

	var seen [][]Notification
	unsubscribe := c.SubscribeNotifications(func(ns []Notification) { seen = append(seen, ns) })
	defer unsubscribe()

	api.failNotification = errors.New("boom")
	err := c.AddOrUpdateNotification(context.Background(), "new@example.com", true, true)
	require.Error(t, err)
	assert.ErrorContains(t, err, "new@example.com")
	assert.Equal(t, before, c.Notifications())

	require.Len(t, seen, 2, "optimistic apply then rollback")
	assert.Len(t, seen[0], 2)
	assert.Equal(t, before, seen[1])
}

func TestCharger_DeleteNotification(t *testing.T) {
	api := &fakeAPI{setup: &lk.NotificationSetup{
		OnBegin: []lk.NotificationEntry{{Email: "a@example.com", Enabled: 1}},
		OnEnd:   []lk.NotificationEntry{{Email: "b@example.com", Enabled: 1}},
	}}
	c := loadedCharger(t, api)

	require.NoError(t, c.DeleteNotification(context.Background(), "a@example.com"))
	assert.Equal(t, []Notification{{Email: "b@example.com", OnEnd: true}}, c.Notifications())
	assert.ElementsMatch(t, []notificationCall{
		{email: "a@example.com", event: lk.EventOnBegin, deleted: true},
		{email: "a@example.com", event: lk.EventOnEnd, deleted: true},
	}, api.notifications)

	api.failNotification = errors.New("boom")
	require.Error(t, c.DeleteNotification(context.Background(), "b@example.com"))
	assert.Equal(t, []Notification{{Email: "b@example.com", OnEnd: true}}, c.Notifications())
}

func TestCharger_ListPrice(t *testing.T) {
	api := &fakeAPI{listPrice: &pricing.PriceInfo{Nominal: 2, Minimum: 1.1, Valuta: "DKK"}}
	c := NewCharger(api, "1234")

	_, ok := c.ListPrice()
	assert.False(t, ok)

	require.NoError(t, c.LoadListPrice(context.Background()))
	lp, ok := c.ListPriceView(true)
	require.True(t, ok)
	assert.Equal(t, 2.5, lp.Nominal)
	assert.Equal(t, 1.38, lp.Minimum)

	require.NoError(t, c.SetListPrice(context.Background(), pricing.PriceInfo{Nominal: 5, Valuta: "DKK"}, true))
	require.Len(t, api.putPrices, 1)
	assert.Equal(t, 4.0, api.putPrices[0].Nominal)
	lp, _ = c.ListPrice()
	assert.Equal(t, 4.0, lp.Nominal)

	api.failListPrice = errors.New("boom")
	require.Error(t, c.SetListPrice(context.Background(), pricing.PriceInfo{Nominal: 9}, false))
	lp, _ = c.ListPrice()
	assert.Equal(t, 4.0, lp.Nominal, "rejected prices are not stored")
}

func TestCharger_LoadAll(t *testing.T) {
	api := &fakeAPI{
		infos:     map[string]*lk.LocationInfo{"1234": {Address: "Main 1", City: "Aarhus"}},
		states:    map[string]*lk.ChargeState{"1234": {IsCharging: 1}},
		listPrice: &pricing.PriceInfo{Nominal: 2},
		setup:     &lk.NotificationSetup{},
		windows: map[schedule.Kind][]schedule.Window{
			schedule.KindAlwaysOn:  {{Days: []int{0}, Start: 0, Interval: 60}},
			schedule.KindOpenHours: {{Days: []int{5, 6}, Start: 480, Interval: 600}},
		},
	}
	c := NewCharger(api, "1234")
	assert.Equal(t, "Unknown", c.Status())

	require.NoError(t, c.LoadAll(context.Background()))
	assert.Equal(t, "Aarhus", c.Location().City)
	assert.Equal(t, "Charging", c.Status())
	valid, ok := c.Valid()
	assert.True(t, ok)
	assert.True(t, valid)
	assert.Len(t, c.Schedule(schedule.KindAlwaysOn).Windows(), 1)
	assert.Equal(t, []int{5, 6}, c.Schedule(schedule.KindOpenHours).Windows()[0].Days)
}

func TestChargers(t *testing.T) {
	api := &fakeAPI{
		ids: []string{"b", "a", "b"},
		infos: map[string]*lk.LocationInfo{
			"b": {City: "Odense"},
		},
		states:   map[string]*lk.ChargeState{},
		failInfo: map[string]error{"a": errors.New("offline")},
	}
	cs := NewChargers(api)

	all, err := cs.Init(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID())
	assert.Equal(t, "a", all[1].ID())

	assert.Nil(t, cs.Selected())
	require.Error(t, cs.Select("zzz"))
	require.NoError(t, cs.Select("a"))
	assert.Equal(t, "a", cs.Selected().ID())

	err = cs.LoadAll(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "charger a")

	b, ok := cs.Get("b")
	require.True(t, ok)
	assert.Equal(t, "Odense", b.Location().City, "one failing charger does not stop the others")

	_, err = cs.Init(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cs.Selected(), "init clears the selection")
}
