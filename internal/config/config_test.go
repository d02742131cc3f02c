package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const base = `
app:
  env: dev
db:
  dsn: postgres://localhost/hoops
jwt:
  secret: s
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, base+`
assessment:
  record_max_age_years: 3
  timezone: Europe/Madrid
`))
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.App.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "en", cfg.Assessment.DefaultLocale)

	c := cfg.Assessment.Constraints()
	assert.Equal(t, 3, c.RecordMaxAgeYears)
	assert.Equal(t, 500, c.MeasurementNotesMax)

	loc, err := cfg.Assessment.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown env", "app:\n  env: staging\ndb:\n  dsn: x\njwt:\n  secret: s\n"},
		{"bad timezone", base + "assessment:\n  timezone: Mars/Olympus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrConfigNotLoaded)
		})
	}
}
