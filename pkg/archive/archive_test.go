package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFromConfigWithStaticCredentials(t *testing.T) {
	a, err := NewFromConfig(context.Background(), Config{
		Bucket:          "gatefix-backups",
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		ForcePathStyle:  true,
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
	})
	require.NoError(t, err)
	require.NotNil(t, a.client)
	require.Equal(t, "gatefix-backups", a.bucket)
}
