package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funnelwire/funnelwire-go/record"
)

func trackFixtures(names ...string) []Action {
	actions := make([]Action, 0, len(names))
	for _, n := range names {
		id := record.Int(1)
		actions = append(actions, &TrackAction{
			Action: ActionTrack,
			UserID: &id,
			Event:  n,
		})
	}
	return actions
}

func TestBuildChunksPreserveOrder(t *testing.T) {
	actions := trackFixtures("a", "b", "c", "d", "e")
	batches := Build(actions, BatchOptions{ActionsPerRequest: 2})

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)

	var got []string
	for _, b := range batches {
		for _, a := range b {
			got = append(got, a.(*TrackAction).Event)
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}

func TestBuildDefaultLimit(t *testing.T) {
	actions := trackFixtures(make([]string, DefaultActionsPerRequest+1)...)
	batches := Build(actions, BatchOptions{})

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], DefaultActionsPerRequest)
	assert.Len(t, batches[1], 1)
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, Build(nil, BatchOptions{}))
}

func TestBuildAllowOfflineMarksTrackActions(t *testing.T) {
	id := record.Int(1)
	attr := &UserAttributesAction{Action: ActionSetUserAttributes, UserID: &id}
	track := &TrackAction{Action: ActionTrack, UserID: &id, Event: "purchase"}

	Build([]Action{attr, track}, BatchOptions{AllowOffline: true})

	assert.True(t, track.AllowOffline)
	assert.False(t, attr.ForceAnomalousOverride)
}

func TestBuildForceAnomalousOverrideMarksWholeBatch(t *testing.T) {
	id := record.Int(1)
	attr := &UserAttributesAction{Action: ActionSetUserAttributes, UserID: &id}
	dev := &DeviceAttributesAction{Action: ActionSetDeviceAttributes, DeviceID: &id}
	track := &TrackAction{Action: ActionTrack, UserID: &id, Event: "purchase"}

	Build([]Action{attr, dev, track}, BatchOptions{ForceAnomalousOverride: true})

	assert.True(t, attr.ForceAnomalousOverride)
	assert.True(t, dev.ForceAnomalousOverride)
	assert.True(t, track.ForceAnomalousOverride)
	assert.False(t, track.AllowOffline)
}
