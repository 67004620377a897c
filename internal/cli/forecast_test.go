package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast_Text(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, "--config", cfg, "forecast", "Germany")
	require.NoError(t, err)
	assert.Contains(t, out, "CO2 forecast for Germany")
	assert.Contains(t, out, "fit over 22 years: slope -5.0000/year, R² 1.0000")
	assert.Contains(t, out, "2022       790.000")
	assert.Contains(t, out, "2031       745.000")
}

func TestForecast_JSONWithHorizon(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, "--config", cfg, "--format", "json", "forecast", "China", "--horizon", "3")
	require.NoError(t, err)

	var resp struct {
		Data ForecastResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "China", resp.Data.Country)
	require.Len(t, resp.Data.Predicted, 3)
	assert.InDelta(t, 2024.0, resp.Data.Predicted[2].T, 1e-9)
	assert.InDelta(t, 3400.0+400*24, resp.Data.Predicted[2].V, 1e-6)
	assert.True(t, resp.Data.Predicted[0].Predicted)
}

func TestForecast_HorizonZero(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, "--config", cfg, "forecast", "Germany", "--horizon", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing predicted")
}

func TestForecast_Errors(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, "--config", cfg, "forecast", "Atlantis")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeInsufficientHistory)

	out, err = execute(t, "--config", cfg, "forecast", "Narnia")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeUnknownCountry)
}

func TestForecast_ErrorCodesJSON(t *testing.T) {
	cfg := writeConfig(t, "")

	tests := []struct {
		country string
		code    string
	}{
		{"Atlantis", "E_INSUFFICIENT_HISTORY"},
		{"Narnia", "E_UNKNOWN_COUNTRY"},
	}
	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			out, err := execute(t, "--config", cfg, "--format", "json", "forecast", tt.country)
			require.Error(t, err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
