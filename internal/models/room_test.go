package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T) chain.Address {
	t.Helper()
	kp, err := chain.NewKeypair()
	require.NoError(t, err)
	return kp.Address()
}

func TestRoomJSONRoundTripBeforeStart(t *testing.T) {
	r := Room{
		ID:           uuid.Must(uuid.NewV7()),
		Host:         testAddress(t),
		Players:      []chain.Address{},
		Status:       RoomWaiting,
		SelectedMaps: MapCodes{},
		CreatedAt:    1_700_000_000,
		ExpiresAt:    1_700_001_800,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"selected_maps":[]`)
	assert.Contains(t, string(data), `"status":"waiting"`)

	var back Room
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
	assert.NotNil(t, back.SelectedMaps)
}

func TestRoomJSONRoundTripCompleted(t *testing.T) {
	r := Room{
		ID:           uuid.Must(uuid.NewV7()),
		Host:         testAddress(t),
		Players:      []chain.Address{testAddress(t), testAddress(t)},
		Status:       RoomCompleted,
		SelectedMaps: MapCodes{3, 0, 255},
		CreatedAt:    10,
		ExpiresAt:    1810,
		StartedAt:    20,
		EndedAt:      30,
		EntryFee:     1_000_000,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"selected_maps":[3,0,255]`)

	var back Room
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}

func TestMapCodesRejectOutOfRange(t *testing.T) {
	var m MapCodes
	assert.Error(t, json.Unmarshal([]byte(`[1,256]`), &m))
	assert.Error(t, json.Unmarshal([]byte(`[-1]`), &m))
}

func TestRoomStatusText(t *testing.T) {
	for _, st := range []RoomStatus{RoomWaiting, RoomActive, RoomCompleted, RoomExpired} {
		text, err := st.MarshalText()
		require.NoError(t, err)
		var back RoomStatus
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, st, back)
	}
	_, err := ParseRoomStatus("paused")
	assert.Error(t, err)
	_, err = RoomStatus(9).MarshalText()
	assert.Error(t, err)
}

func TestRoomCloneDoesNotAlias(t *testing.T) {
	r := &Room{Players: []chain.Address{testAddress(t)}, SelectedMaps: MapCodes{1}}
	c := r.Clone()
	c.Players[0] = chain.ZeroAddress
	c.SelectedMaps[0] = 9
	assert.NotEqual(t, chain.ZeroAddress, r.Players[0])
	assert.Equal(t, byte(1), r.SelectedMaps[0])
	assert.True(t, r.HasPlayer(r.Players[0]))
}
