package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/internal/freight"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDensityCommand(t *testing.T) {
	out, err := run(t, "density", "--weight", "10", "--length", "12", "--width", "12", "--height", "12")
	require.NoError(t, err)

	assert.Contains(t, out, "92.5")
	assert.Contains(t, out, "156600-04")
	assert.Contains(t, out, "Moderate Density")
}

func TestDensityCommandJSON(t *testing.T) {
	out, err := run(t, "--json", "density", "--weight", "40", "--length", "12", "--width", "12", "--height", "12")
	require.NoError(t, err)

	var res freight.DensityResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, freight.Class50, res.Class)
	assert.InDelta(t, 40.0, res.Density, 1e-9)
}

func TestDensityCommandMissingHeight(t *testing.T) {
	_, err := run(t, "density", "--weight", "10", "--length", "12", "--width", "12")
	require.ErrorIs(t, err, freight.ErrInsufficientData)
	assert.Contains(t, err.Error(), "height")
}

func TestDensityTiers(t *testing.T) {
	out, err := run(t, "density", "--tiers")
	require.NoError(t, err)

	assert.Contains(t, out, "Ultra Low Density")
	assert.Contains(t, out, "22.5")
}

func TestHazmatCommand(t *testing.T) {
	out, err := run(t, "--json", "hazmat", "3", "3.9", "12")
	require.NoError(t, err)

	var results []hazmatResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)

	assert.Equal(t, freight.MatchExact, results[0].Match)
	assert.Equal(t, "48635", results[0].Rule.NMFC)
	assert.Equal(t, freight.MatchMainClass, results[1].Match)
	assert.Equal(t, freight.Class92_5, results[1].Rule.Class)
	assert.Equal(t, freight.MatchDefault, results[2].Match)
	assert.Equal(t, freight.MiscDangerousGoodsNMFC, results[2].Rule.NMFC)
}

func TestHazmatCommandAll(t *testing.T) {
	out, err := run(t, "hazmat", "--all")
	require.NoError(t, err)

	assert.Contains(t, out, "Radioactive Material")
	assert.Contains(t, out, "44150")
}

func TestHazmatCommandRequiresClass(t *testing.T) {
	_, err := run(t, "hazmat")
	assert.Error(t, err)
}

func TestDensityTiersJSON(t *testing.T) {
	out, err := run(t, "--json", "density", "--tiers")
	require.NoError(t, err)

	var rows []tierRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, len(freight.Tiers()))
	assert.Equal(t, 35.0, rows[0].MinDensity)
	assert.Equal(t, 0.0, rows[len(rows)-1].MinDensity)
}
