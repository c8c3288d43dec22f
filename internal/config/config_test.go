package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_PartialOverridesFillDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_dim: 128\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 128, cfg.VectorDim)
	require.Equal(t, Default().HNSW, cfg.HNSW)
	require.Equal(t, "agrama:", cfg.Snapshot.KeyPrefix)
}

func TestValidate_RejectsBadDimension(t *testing.T) {
	cfg := Default()
	cfg.VectorDim = 100
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsWeightsOverBudget(t *testing.T) {
	cfg := Default()
	cfg.Hybrid.DefaultAlpha = 0.6
	cfg.Hybrid.DefaultBeta = 0.6
	cfg.Hybrid.DefaultGamma = 0.2
	require.Error(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
