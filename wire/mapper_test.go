package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funnelwire/funnelwire-go/record"
)

var (
	firstEventTime = time.Date(2015, 4, 30, 12, 0, 0, 0, time.UTC)
	lastEventTime  = time.Date(2015, 5, 1, 12, 0, 0, 0, time.UTC)
)

func userFixture() *record.Fields {
	return record.New().
		Set("user_id", record.Int(123456)).
		Set("first_name", record.String("Mike")).
		Set("last_name", record.String("Jones")).
		Set("gender", record.String("m")).
		Set("email", record.String("still_tippin@test.com")).
		Set("create_date", record.Date(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))).
		Set("is_tipping", record.Bool(true)).
		Set("events", record.Mapping(record.New().
			Set("eventName1", record.Mapping(record.New().
				Set("count", record.Int(1)).
				Set("firstTime", record.Instant(firstEventTime)).
				Set("lastTime", record.Instant(lastEventTime))))))
}

func deviceFixture() *record.Fields {
	return record.New().
		Set("device_id", record.String("fu123")).
		Set("appVersion", record.String("x42x")).
		Set("deviceModel", record.String("p0d")).
		Set("create_date", record.Date(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMapUserAttributes(t *testing.T) {
	a, err := MapUserAttributes(userFixture())
	require.Nil(t, err)

	assert.Equal(t, ActionSetUserAttributes, a.Kind())
	assert.Equal(t, int64(123456), a.UserID.AsInt())
	assert.Nil(t, a.DeviceID)

	assert.Equal(t, EventAggregate{
		Count:     1,
		FirstTime: firstEventTime.Unix(),
		LastTime:  lastEventTime.Unix(),
	}, a.Events["eventName1"])

	bs, err := json.Marshal(a.UserAttributes)
	require.Nil(t, err)

	var attrs map[string]any
	require.Nil(t, json.Unmarshal(bs, &attrs))
	assert.Equal(t, "Mike", attrs["first_name"])
	assert.Equal(t, "2010-01-01", attrs["create_date"])
	assert.Equal(t, true, attrs["is_tipping"])
	assert.NotContains(t, attrs, "user_id")
	assert.NotContains(t, attrs, "events")
	assert.NotContains(t, attrs, "devices")
}

func TestMapUserAttributesWithDevices(t *testing.T) {
	user := userFixture().Set("devices", record.List([]*record.Fields{deviceFixture()}))

	a, err := MapUserAttributes(user)
	require.Nil(t, err)
	require.Len(t, a.Devices, 1)

	bs, err := json.Marshal(a.Devices[0])
	require.Nil(t, err)

	var dev map[string]any
	require.Nil(t, json.Unmarshal(bs, &dev))
	assert.Equal(t, "fu123", dev["device_id"])
	assert.Equal(t, "x42x", dev["appVersion"])
	assert.Equal(t, "2018-01-01", dev["create_date"])

	var attrs map[string]any
	abs, err := json.Marshal(a.UserAttributes)
	require.Nil(t, err)
	require.Nil(t, json.Unmarshal(abs, &attrs))
	assert.NotContains(t, attrs, "devices")
}

func TestMapDeviceAttributes(t *testing.T) {
	a, err := MapDeviceAttributes(deviceFixture())
	require.Nil(t, err)

	assert.Equal(t, ActionSetDeviceAttributes, a.Kind())
	assert.Equal(t, "fu123", a.DeviceID.AsString())
	assert.Nil(t, a.UserID)

	bs, err := json.Marshal(a.DeviceAttributes)
	require.Nil(t, err)

	var attrs map[string]any
	require.Nil(t, json.Unmarshal(bs, &attrs))
	assert.Equal(t, "x42x", attrs["appVersion"])
	assert.Equal(t, "p0d", attrs["deviceModel"])
	assert.Equal(t, "2018-01-01", attrs["create_date"])
	assert.NotContains(t, attrs, "device_id")
}

func TestMapEvent(t *testing.T) {
	at := time.Date(2015, 5, 1, 1, 2, 3, 0, time.UTC)
	ev := record.New().
		Set("user_id", record.Int(123456)).
		Set("event", record.String("purchase")).
		Set("time", record.Instant(at)).
		Set("some_timestamp", record.String("2015-05-01 01:02:03"))

	a, err := MapEvent(ev, time.Now())
	require.Nil(t, err)

	assert.Equal(t, ActionTrack, a.Kind())
	assert.Equal(t, "purchase", a.Event)
	assert.Equal(t, at.Unix(), a.Time)
	assert.Equal(t, int64(123456), a.UserID.AsInt())

	v, ok := a.Params.Get("some_timestamp")
	require.True(t, ok)
	assert.Equal(t, "2015-05-01 01:02:03", v.AsString())
	assert.Equal(t, 1, a.Params.Len())
}

func TestMapEventWithoutTimeUsesNow(t *testing.T) {
	now := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)
	ev := record.New().
		Set("user_id", record.Int(1)).
		Set("event", record.String("page_view"))

	a, err := MapEvent(ev, now)
	require.Nil(t, err)
	assert.Equal(t, now.Unix(), a.Time)
}

func TestMapEventEmptyParamsOmitted(t *testing.T) {
	ev := record.New().
		Set("user_id", record.Int(54321)).
		Set("event", record.String("purchase_page_view")).
		Set("time", record.Instant(time.Now()))

	a, err := MapEvent(ev, time.Now())
	require.Nil(t, err)
	assert.Nil(t, a.Params)

	bs, err := json.Marshal(a)
	require.Nil(t, err)
	assert.NotContains(t, string(bs), "params")
}

func TestMapEventMissingName(t *testing.T) {
	ev := record.New().Set("user_id", record.Int(1))
	_, err := MapEvent(ev, time.Now())
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no event name")
}

func TestMapEventMissingIdentity(t *testing.T) {
	ev := record.New().Set("event", record.String("no_user_id_event"))
	_, err := MapEvent(ev, time.Now())
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "No device_id or user_id in hash")
}

func TestMappingIsPure(t *testing.T) {
	first, err := MapUserAttributes(userFixture())
	require.Nil(t, err)
	second, err := MapUserAttributes(userFixture())
	require.Nil(t, err)

	a, err := json.Marshal(first)
	require.Nil(t, err)
	b, err := json.Marshal(second)
	require.Nil(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestResetAnomalies(t *testing.T) {
	a := ResetAnomalies(record.Int(123456))

	assert.Equal(t, ActionSetUserAttributes, a.Kind())
	assert.True(t, a.ResetAnomalies)
	assert.Nil(t, a.UserAttributes)

	bs, err := json.Marshal(a)
	require.Nil(t, err)
	assert.Contains(t, string(bs), `"resetAnomalies":true`)
	assert.NotContains(t, string(bs), "userAttributes")
}
