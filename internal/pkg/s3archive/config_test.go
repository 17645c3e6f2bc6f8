package s3archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetObjectKey(t *testing.T) {
	config := &Config{BucketName: "melodiary-archive"}

	key := config.GetObjectKey("task_abc", 1, ".mp3", 2026, 3)
	assert.Equal(t, "tracks/2026/03/task_abc-1.mp3", key)
}

func TestLoadConfig_DisabledByDefault(t *testing.T) {
	t.Setenv("S3_ARCHIVE_ENABLED", "")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	t.Setenv("S3_SECRET_ACCESS_KEY", "")
	t.Setenv("S3_BUCKET_NAME", "")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, config.IsEnabled())
}

func TestLoadConfig_EnabledRequiresCredentials(t *testing.T) {
	t.Setenv("S3_ARCHIVE_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_BUCKET_NAME", "bucket")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Enabled(t *testing.T) {
	t.Setenv("S3_ARCHIVE_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_BUCKET_NAME", "melodiary-archive")
	t.Setenv("S3_REGION", "eu-central-1")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, config.IsEnabled())
	assert.Equal(t, "melodiary-archive", config.GetBucketName())
	assert.Equal(t, "eu-central-1", config.Region)
}
