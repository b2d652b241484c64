package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"aws uses the default resolver", Config{Provider: ProviderAWS, Region: "us-east-1"}, "", false},
		{"wasabi by region", Config{Provider: ProviderWasabi, Region: "eu-west-1"}, "https://s3.eu-west-1.wasabisys.com", false},
		{"wasabi unknown region", Config{Provider: ProviderWasabi, Region: "mars-1"}, "https://s3.ap-southeast-1.wasabisys.com", false},
		{"r2 with endpoint", Config{Provider: ProviderR2, Endpoint: "https://acct.r2.cloudflarestorage.com"}, "https://acct.r2.cloudflarestorage.com", false},
		{"r2 without endpoint", Config{Provider: ProviderR2}, "", true},
		{"unknown provider", Config{Provider: "gcs"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ResolveEndpoint()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = readLimited(strings.NewReader("hello!"), 5)
	assert.ErrorIs(t, err, ErrObjectTooLarge)

	data, err = readLimited(strings.NewReader("unbounded"), 0)
	require.NoError(t, err)
	assert.Equal(t, "unbounded", string(data))
}
