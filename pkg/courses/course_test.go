package courses

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ClockTime
		wantErr bool
	}{
		{input: "18:30", want: ClockTime{Hour: 18, Minute: 30}},
		{input: "00:00", want: ClockTime{}},
		{input: "23:59", want: ClockTime{Hour: 23, Minute: 59}},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "12", wantErr: true},
		{input: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClockTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockTimeString(t *testing.T) {
	assert.Equal(t, "08:05", ClockTime{Hour: 8, Minute: 5}.String())
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("Wednesday")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, day)

	day, err = ParseWeekday("sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, day)

	_, err = ParseWeekday("Someday")
	assert.Error(t, err)
}

func TestCourseJSONRoundTrip(t *testing.T) {
	booked := time.Date(2025, time.May, 12, 19, 2, 0, 0, time.UTC)
	original := Course{
		ID:          "v1",
		Locator:     Locator("#bs_tr4EB9C5B956 > td.bs_sbuch > input"),
		Active:      false,
		BookingDate: &booked,
		CourseDay:   time.Monday,
		CourseTime:  ClockTime{Hour: 18, Minute: 30},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Course
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestCourseJSONWireFormat(t *testing.T) {
	raw := `{
		"id": "v2",
		"cssSelector": ".slot",
		"active": true,
		"bookingDate": null,
		"courseDay": "Tuesday",
		"courseTime": "20:15"
	}`

	var c Course
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, "v2", c.ID)
	assert.Equal(t, Locator(".slot"), c.Locator)
	assert.True(t, c.Active)
	assert.Nil(t, c.BookingDate)
	assert.Equal(t, time.Tuesday, c.CourseDay)
	assert.Equal(t, ClockTime{Hour: 20, Minute: 15}, c.CourseTime)
}

func TestCourseJSONRejectsBadWeekday(t *testing.T) {
	raw := `{"id": "v3", "cssSelector": ".slot", "courseDay": "Funday", "courseTime": "10:00"}`

	var c Course
	err := json.Unmarshal([]byte(raw), &c)
	assert.ErrorContains(t, err, "invalid weekday")
}
