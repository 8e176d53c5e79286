package database

import (
	"testing"

	"github.com/AHMED-techNOP/01BLOG/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		env         string
		allowAuto   bool
		wantSQL     bool
		wantAuto    bool
		expectError bool
	}{
		{"hybrid in development", "hybrid", "development", false, true, true, false},
		{"hybrid in production", "hybrid", "production", false, true, false, false},
		{"default mode is hybrid", "", "development", false, true, true, false},
		{"sql only", "sql", "production", false, true, false, false},
		{"auto in development", "auto", "development", false, false, true, false},
		{"auto in production refused", "auto", "production", false, false, false, true},
		{"auto in production with override", "auto", "production", true, false, true, false},
		{"unknown mode", "bogus", "development", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Env:                           tt.env,
				DBSchemaMode:                  tt.mode,
				DBAutoMigrateAllowDestructive: tt.allowAuto,
			}
			runSQL, runAuto, err := schemaPolicy(cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestRegisteredMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "initial_schema", ms[0].Name)
	assert.Contains(t, ms[0].UpScript, "CREATE TABLE IF NOT EXISTS notifications")
	assert.Contains(t, ms[0].DownScript, "DROP TABLE IF EXISTS notifications")
}
