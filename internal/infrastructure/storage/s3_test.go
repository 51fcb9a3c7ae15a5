package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() aws.Config {
	return aws.Config{
		Region:      "eu-central-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
}

func TestPresignedURL(t *testing.T) {
	s, err := NewS3StorageFromConfig(testConfig(), S3Config{
		Bucket:     "kyc-documents",
		Endpoint:   "http://minio:9000",
		PresignTTL: 5 * time.Minute,
	})
	require.NoError(t, err)

	raw, err := s.URL(context.Background(), "user-1/passport_1705309200000_id.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", u.Host)
	assert.Equal(t, "/kyc-documents/user-1/passport_1705309200000_id.pdf", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3StorageFromConfig(testConfig(), S3Config{})
	assert.Error(t, err)
}
