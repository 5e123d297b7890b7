package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocationS3URL(t *testing.T) {
	cfg, ok, err := ParseLocation("s3://gatefix-backups/engine-1/")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "gatefix-backups", cfg.Bucket)
	assert.Equal(t, "engine-1/", cfg.KeyPrefix)
}

func TestParseLocationAddsTrailingSlashToPrefix(t *testing.T) {
	cfg, ok, err := ParseLocation("s3://gatefix-backups/engine-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "engine-1/", cfg.KeyPrefix)
}

func TestParseLocationNonS3SchemeIsNotOK(t *testing.T) {
	_, ok, err := ParseLocation("/var/lib/gatefix/archive")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseLocationNoPrefix(t *testing.T) {
	cfg, ok, err := ParseLocation("s3://gatefix-backups")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "", cfg.KeyPrefix)
}
