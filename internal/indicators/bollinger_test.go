package indicators

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/energyls/internal/contracts"
)

func TestBollinger(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	mean, upper, lower, err := Bollinger(closes, BollingerConfig{Window: 3, K: 2})
	require.NoError(t, err)
	require.Len(t, mean, 5)

	for i := 0; i < 2; i++ {
		assert.True(t, math.IsNaN(mean[i]), "row %d", i)
		assert.True(t, math.IsNaN(upper[i]), "row %d", i)
		assert.True(t, math.IsNaN(lower[i]), "row %d", i)
	}

	// window {1,2,3}: mean 2, sample std 1
	assert.InDelta(t, 2.0, mean[2], 1e-12)
	assert.InDelta(t, 4.0, upper[2], 1e-12)
	assert.InDelta(t, 0.0, lower[2], 1e-12)

	assert.InDelta(t, 4.0, mean[4], 1e-12)
	assert.InDelta(t, 6.0, upper[4], 1e-12)
	assert.InDelta(t, 2.0, lower[4], 1e-12)
}

func TestBollinger_ConstantSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 50
	}

	mean, upper, lower, err := Bollinger(closes, DefaultBollingerConfig())
	require.NoError(t, err)

	assert.True(t, math.IsNaN(mean[18]))
	assert.InDelta(t, 50.0, mean[19], 1e-12)
	assert.InDelta(t, 50.0, upper[24], 1e-12)
	assert.InDelta(t, 50.0, lower[24], 1e-12)
}

func TestBollinger_InvalidConfig(t *testing.T) {
	_, _, _, err := Bollinger([]float64{1, 2}, BollingerConfig{Window: 1, K: 2})
	assert.Error(t, err)

	_, _, _, err = Bollinger([]float64{1, 2}, BollingerConfig{Window: 20, K: 0})
	assert.Error(t, err)
}

func TestBollingerBands_ShortSeries(t *testing.T) {
	bars := []contracts.Bar{{Close: 1}, {Close: 2}}

	bands, err := BollingerBands(bars, DefaultBollingerConfig())
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.True(t, math.IsNaN(bands[1].Upper))
}

func TestBand_JSON(t *testing.T) {
	day := time.Date(2018, 9, 24, 0, 0, 0, 0, time.UTC)
	bands := []Band{
		{Date: day, Close: 10, Mean: math.NaN(), Upper: math.NaN(), Lower: math.NaN()},
		{Date: day.AddDate(0, 0, 1), Close: 11, Mean: 10.5, Upper: 12, Lower: 9},
	}

	data, err := json.Marshal(bands)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"date":"2018-09-24","close":10,"mean":null,"upper":null,"lower":null},
		{"date":"2018-09-25","close":11,"mean":10.5,"upper":12,"lower":9}
	]`, string(data))

	var decoded []Band
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, math.IsNaN(decoded[0].Mean))
	assert.Equal(t, 12.0, decoded[1].Upper)
	assert.True(t, decoded[1].Date.Equal(day.AddDate(0, 0, 1)))
}

func TestFrame_WriteCSV(t *testing.T) {
	day := time.Date(2018, 9, 24, 0, 0, 0, 0, time.UTC)
	df := Frame([]Band{{Date: day, Close: 10, Mean: 9, Upper: 11, Lower: 7}})

	assert.Equal(t, 1, df.Nrow())
	assert.Equal(t, []string{"date", "close", "mean", "upper", "lower"}, df.Names())

	var buf bytes.Buffer
	require.NoError(t, df.WriteCSV(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "date,close,mean,upper,lower\n2018-09-24,"))
}
