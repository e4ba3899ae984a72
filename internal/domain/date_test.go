package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		RaisedOn   Date  `json:"raisedOn"`
		AssignedOn *Date `json:"assignedOn"`
		ClosedOn   *Date `json:"closedOn"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"raisedOn":"2024-01-01","assignedOn":null}`), &payload))

	assert.Equal(t, "2024-01-01", payload.RaisedOn.String())
	assert.Nil(t, payload.AssignedOn)
	assert.Nil(t, payload.ClosedOn)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raisedOn":"2024-01-01","assignedOn":null,"closedOn":null}`, string(out))
}

func TestDateRejectsTimestamps(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"2024-01-01T10:00:00Z"`), &d))
}

func TestNewDateDropsTimeOfDay(t *testing.T) {
	at := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.FixedZone("X", 3600))
	d := NewDate(at)

	assert.Equal(t, "2024-03-05", d.String())
	assert.Equal(t, 0, d.Hour())
	assert.Equal(t, time.UTC, d.Location())
}
