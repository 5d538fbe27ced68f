package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.Airdesk.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Airdesk.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Schedule.Interval)
	assert.Equal(t, "Local", cfg.Schedule.Timezone)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.Equal(t, "failure", cfg.Push.NotifyOn)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.False(t, cfg.Push.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
airdesk:
  base_url: http://localhost:9999/api
  timeout_seconds: 5
  requests_per_second: 4
schedule:
  interval_seconds: 60
  timezone: Europe/Berlin
server:
  enabled: true
  port: 9090
  rate_limit_burst: 20
push:
  vapid_public_key: pub
  vapid_private_key: priv
  notify_on: always
  subscriptions:
    - endpoint: https://push.example.com/abc
      p256dh: key
      auth: secret
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/api", cfg.Airdesk.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Airdesk.Timeout)
	assert.Equal(t, 4.0, cfg.Airdesk.RequestsPerSecond)
	assert.Equal(t, time.Minute, cfg.Schedule.Interval)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
	assert.True(t, cfg.Push.Enabled())
	require.Len(t, cfg.Push.Subscriptions, 1)
	assert.Equal(t, "https://push.example.com/abc", cfg.Push.Subscriptions[0].Endpoint)

	loc, err := cfg.Schedule.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvCredentials(t *testing.T) {
	testCases := []struct {
		name      string
		env       map[string]string
		expected  Credentials
		expectErr string
	}{
		{
			name: "all present",
			env: map[string]string{
				EnvUser: "jane", EnvPassword: "hunter2", EnvWorkplace: "1234",
			},
			expected: Credentials{Username: "jane", Password: "hunter2", WorkplaceID: 1234},
		},
		{
			name:      "workplace missing",
			env:       map[string]string{EnvUser: "jane", EnvPassword: "hunter2"},
			expectErr: "missing AIRDESK_WORKPLACE",
		},
		{
			name:      "everything missing",
			env:       map[string]string{},
			expectErr: "missing AIRDESK_USER, AIRDESK_PASS, AIRDESK_WORKPLACE",
		},
		{
			name: "workplace not numeric",
			env: map[string]string{
				EnvUser: "jane", EnvPassword: "hunter2", EnvWorkplace: "desk-7",
			},
			expectErr: "invalid AIRDESK_WORKPLACE",
		},
		{
			name: "username and password are passed through untrimmed",
			env: map[string]string{
				EnvUser: " jane", EnvPassword: "  s3cret ", EnvWorkplace: " 1234\n",
			},
			expected: Credentials{Username: " jane", Password: "  s3cret ", WorkplaceID: 1234},
		},
		{
			name: "blank values count as missing",
			env: map[string]string{
				EnvUser: "  ", EnvPassword: "hunter2", EnvWorkplace: "7",
			},
			expectErr: "missing AIRDESK_USER",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := EnvCredentials{Lookup: func(key string) (string, bool) {
				v, ok := tc.env[key]
				return v, ok
			}}

			creds, err := src.Credentials()
			if tc.expectErr != "" {
				require.ErrorIs(t, err, ErrIncompleteCredentials)
				assert.Contains(t, err.Error(), tc.expectErr)
				assert.Equal(t, Credentials{}, creds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, creds)
		})
	}
}
