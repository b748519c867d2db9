package calendar

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.String())

	for _, bad := range []string{"2024-13-40", "15/03/2024", "", "2024-3-5x"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
		assert.ErrorIs(t, err, ErrFormat, bad)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00"},
		{"17:30", "17:30"},
		{"23:59", "23:59"},
		{" 00:00 ", "00:00"},
	}
	for _, tt := range tests {
		c, err := ParseClock(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, c.String())
	}

	for _, bad := range []string{"24:00", "10:60", "ten", "", "10.30", "9:05", "09:5", "+9:05", "09:05:00", "１0:00"} {
		_, err := ParseClock(bad)
		assert.True(t, errors.Is(err, ErrInvalidClock), bad)
	}
}

func TestDate_ScanValue(t *testing.T) {
	d := NewDate(2024, 3, 15)
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", v)

	var scanned Date
	require.NoError(t, scanned.Scan([]byte("2024-03-15")))
	assert.True(t, d.Equal(scanned))

	assert.Error(t, scanned.Scan("not a date"))
	assert.Error(t, scanned.Scan(42))
}

func TestClock_ScanValue(t *testing.T) {
	c := NewClock(10, 15)
	v, err := c.Value()
	require.NoError(t, err)
	assert.Equal(t, "10:15", v)

	var scanned Clock
	require.NoError(t, scanned.Scan("10:15"))
	assert.Equal(t, c, scanned)

	_, err = Clock(MinutesPerDay).Value()
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Date Date     `json:"date"`
		Slot Interval `json:"slot"`
	}
	in := payload{Date: NewDate(2024, 3, 15), Slot: NewInterval(NewClock(9, 0), NewClock(9, 30))}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-15","slot":{"start":"09:00","end":"09:30"}}`, string(b))

	var out payload
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, in.Date.Equal(out.Date))
	assert.Equal(t, in.Slot, out.Slot)

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"date":"2024-13-40"}`), &out), ErrInvalidDate)
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, 2, 28)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.IsZero())
	assert.True(t, Date{}.IsZero())
}
