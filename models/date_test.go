package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfUsesUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 02:00 on the 15th in UTC+9 is still the 14th in UTC
	d := DateOf(time.Date(2024, 3, 15, 2, 0, 0, 0, loc))
	assert.Equal(t, "2024-03-14", d.String())
}

func TestDateArithmeticAcrossMonthAndYear(t *testing.T) {
	assert.Equal(t, "2024-03-01", NewDate(2024, 2, 29).AddDays(1).String())
	assert.Equal(t, "2023-12-31", NewDate(2024, 1, 1).AddDays(-1).String())
	assert.True(t, NewDate(2024, 1, 1).AddDays(-1).Equal(NewDate(2023, 12, 31)))
	assert.True(t, NewDate(2024, 1, 1).Before(NewDate(2024, 1, 2)))
	assert.True(t, Date{}.AddDays(3).IsZero())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-07-04")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 7, 4), d)

	d, err = ParseDate("2024-07-04T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-05", d.String())

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("07/04/2024")
	assert.Error(t, err)
}

func TestDateSQLRoundTrip(t *testing.T) {
	v, err := NewDate(2024, 5, 6).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var d Date
	require.NoError(t, d.Scan([]byte("2024-05-06")))
	assert.Equal(t, NewDate(2024, 5, 6), d)
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	assert.Error(t, d.Scan(42))
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}

	b, err := json.Marshal(wrapper{D: NewDate(2024, 1, 2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-01-02"}`, string(b))

	b, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":null}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-01-02"}`), &w))
	assert.Equal(t, NewDate(2024, 1, 2), w.D)
	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &w))
	assert.True(t, w.D.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`{"d":"nope"}`), &w))
}
