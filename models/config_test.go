package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigChainMatchesDefaultFallbackChain(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	require.Equal(t, DefaultFallbackChain, config.Chain())
}

func TestLoadConfigMergesOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_budget_per_day: 2.5\n"), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 2.5, config.MaxBudgetPerDay)
	require.Equal(t, 10000, config.MaxRequestsPerDay)
	require.Equal(t, DefaultFallbackChain, config.Chain())
}

func TestValidateRejectsUnknownChainMethod(t *testing.T) {
	config := DefaultConfig()
	config.FallbackChain = []string{"embed", "carrier-pigeon"}
	require.Error(t, config.Validate())
}
