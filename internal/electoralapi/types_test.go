package electoralapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeRecord_Municipal(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name   string
		record EventTypeRecord
		want   bool
	}{
		{"explicit true", EventTypeRecord{ID: 3, Description: "Local Government Election", IsMunicipal: &yes}, true},
		{"explicit false wins over description", EventTypeRecord{ID: 9, Description: "Municipal By-Election", IsMunicipal: &no}, false},
		{"derived from local government", EventTypeRecord{ID: 3, Description: "Local Government Election"}, true},
		{"derived from municipal", EventTypeRecord{ID: 4, Description: "MUNICIPAL BY-ELECTION"}, true},
		{"national", EventTypeRecord{ID: 1, Description: "National Election"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Municipal())
		})
	}
}

func TestEventRecord_ResolveElectionYear(t *testing.T) {
	y2021, y1989 := 2021, 1989

	tests := []struct {
		name     string
		record   EventRecord
		wantYear int
		wantOK   bool
	}{
		{"explicit election year", EventRecord{Description: "LGE", ElectionYear: &y2021}, 2021, true},
		{"year alias", EventRecord{Description: "LGE", Year: &y2021}, 2021, true},
		{"trailing year in description", EventRecord{Description: "LOCAL GOVERNMENT ELECTION 2016"}, 2016, true},
		{"no year", EventRecord{Description: "BY-ELECTION"}, 0, false},
		{"year too old", EventRecord{Description: "LGE", Year: &y1989}, 1989, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := tt.record.ResolveElectionYear()
			assert.Equal(t, tt.wantYear, year)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestEventRecord_DecodeDefaultsInactive(t *testing.T) {
	var records []EventRecord
	err := json.Unmarshal([]byte(`[{"ID":1091,"Description":"LOCAL GOVERNMENT ELECTION 2021","IsActive":true},
		{"ID":402,"Description":"LOCAL GOVERNMENT ELECTION 2016"}]`), &records)
	require.NoError(t, err)
	require.Len(t, records, 2)

	event, ok := records[0].ToModel(7, 3)
	require.True(t, ok)
	assert.True(t, event.IsActive)
	assert.Equal(t, 2021, event.ElectionYear)
	assert.Equal(t, int64(7), event.EventTypeID)

	event, ok = records[1].ToModel(7, 3)
	require.True(t, ok)
	assert.False(t, event.IsActive, "absent IsActive defaults to inactive")
}
