package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "host=localhost user=ucc dbname=ucc")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("S3_BUCKET", "ucc-documents")
}

func TestLoadDefaultsWorkTypeCatalogue(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	// the allow-list must never be empty on a default deployment
	require.NotEmpty(t, cfg.UCC.AllowedWorkTypes)
	assert.Contains(t, cfg.UCC.AllowedWorkTypes, "Regular Civil Works")
	assert.Contains(t, cfg.UCC.AllowedWorkTypes, "Routine/Regular Maintenance Works")
}

func TestLoadWorkTypeOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UCC_ALLOWED_WORK_TYPES", "Regular Civil Works, DPR Consultancy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Regular Civil Works", "DPR Consultancy"}, cfg.UCC.AllowedWorkTypes)
}

func TestLoadRequiresCoreSettings(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("S3_BUCKET", "ucc-documents")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7093, cfg.HTTP.Port)
	assert.Equal(t, 3, cfg.Alloc.MaxRetries)
	assert.Equal(t, "ap-south-1", cfg.S3.Region)
}
