package projection_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/appdotbuilder/school-management-app/internal/projection"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Run("ParseDate_Plain", func(t *testing.T) {
		d, err := projection.ParseDate("2024-03-09")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-09", d.String())
	})

	t.Run("ParseDate_Timestamp", func(t *testing.T) {
		d, err := projection.ParseDate("2024-03-09T23:30:00-02:00")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-10", d.String())
	})

	t.Run("ParseDate_Invalid", func(t *testing.T) {
		_, err := projection.ParseDate("09/03/2024")
		assert.Error(t, err)
	})

	t.Run("Scan", func(t *testing.T) {
		var d projection.Date

		require.NoError(t, d.Scan("2024-01-15"))
		assert.Equal(t, projection.NewDate(2024, time.January, 15), d)

		require.NoError(t, d.Scan([]byte("2024-01-16 00:00:00+00:00")))
		assert.Equal(t, projection.NewDate(2024, time.January, 16), d)

		require.NoError(t, d.Scan(time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, projection.NewDate(2024, time.January, 17), d)

		require.NoError(t, d.Scan(nil))
		assert.True(t, d.IsZero())

		assert.Error(t, d.Scan(42))
	})

	t.Run("Value", func(t *testing.T) {
		v, err := projection.NewDate(2024, time.February, 29).Value()
		require.NoError(t, err)
		assert.Equal(t, "2024-02-29", v)

		v, err = projection.Date{}.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("JSON", func(t *testing.T) {
		payload := struct {
			Date  projection.Date `json:"date"`
			Empty projection.Date `json:"empty"`
		}{Date: projection.NewDate(2023, time.December, 1)}

		body, err := json.Marshal(payload)
		require.NoError(t, err)
		assert.JSONEq(t, `{"date":"2023-12-01","empty":null}`, string(body))

		var decoded struct {
			Date projection.Date `json:"date"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"date":"2023-12-01"}`), &decoded))
		assert.Equal(t, payload.Date, decoded.Date)
	})
}

func TestNumeric(t *testing.T) {
	t.Run("Percentage_Exact", func(t *testing.T) {
		p := projection.Percentage(decimal.RequireFromString("67.50"), decimal.RequireFromString("75.00"))
		assert.Equal(t, 90.0, projection.Float(p))
	})

	t.Run("Percentage_ZeroWhole", func(t *testing.T) {
		assert.True(t, projection.Percentage(decimal.NewFromInt(5), decimal.Zero).IsZero())
	})

	t.Run("Rate", func(t *testing.T) {
		assert.Equal(t, 75.0, projection.Float(projection.Rate(3, 4)))
		assert.Equal(t, 0.0, projection.Float(projection.Rate(0, 0)))
	})

	t.Run("Mean", func(t *testing.T) {
		sum := decimal.RequireFromString("85.50").Add(decimal.RequireFromString("92.75"))
		assert.Equal(t, 89.125, projection.Float(projection.Mean(sum, 2)))
		assert.True(t, projection.Mean(decimal.Zero, 0).IsZero())
	})

	t.Run("Round2_HalfAwayFromZero", func(t *testing.T) {
		assert.Equal(t, 2.35, projection.Round2(decimal.RequireFromString("2.345")))
		assert.Equal(t, -2.35, projection.Round2(decimal.RequireFromString("-2.345")))
		assert.Equal(t, 66.67, projection.Round2(projection.Rate(2, 3)))
		assert.Equal(t, 89.13, projection.Round2(decimal.RequireFromString("89.125")))
	})

	t.Run("FromFloat", func(t *testing.T) {
		assert.Equal(t, "85.5", projection.FromFloat(85.5).String())
		assert.Equal(t, "10.13", projection.FromFloat(10.125).String())
	})
}
