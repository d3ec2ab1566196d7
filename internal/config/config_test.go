package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	cfg := Default()
	cfg.Connection.Host = "mud.example.org"
	cfg.Accounts.User = "bot"
	cfg.Accounts.Password = "hunter2"
	return cfg
}

func TestValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Connection.Port = 4000
	assert.Equal(t, "mud.example.org:4000", cfg.Connection.Addr())
}

func TestValidateRejectsMissingHost(t *testing.T) {
	cfg := validConfig()
	cfg.Connection.Host = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBothAuthModes(t *testing.T) {
	cfg := validConfig()
	cfg.Accounts.AccountsFile = "accounts.txt"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNeitherAuthMode(t *testing.T) {
	cfg := validConfig()
	cfg.Accounts.User = ""
	cfg.Accounts.Password = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveDuration(t *testing.T) {
	cfg := validConfig()
	cfg.Run.Duration = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mudload.yaml")
	yaml := `
connection:
  host: play.example.org
  port: 5000
accounts:
  user: loadbot
  password: secret
run:
  bots: 10
  duration: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "play.example.org", cfg.Connection.Host)
	assert.Equal(t, 5000, cfg.Connection.Port)
	assert.Equal(t, 10, cfg.Run.Bots)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMergesStandaloneWorldFile(t *testing.T) {
	dir := t.TempDir()
	worldPath := filepath.Join(dir, "world.yaml")
	require.NoError(t, os.WriteFile(worldPath, []byte(`
trainer_vnum: 3001
train_route:
  3000: north
train_stats: [str, con]
`), 0o600))

	cfgPath := filepath.Join(dir, "mudload.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
connection:
  host: play.example.org
accounts:
  user: loadbot
  password: secret
world_file: %s
`, worldPath)), 0o600))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.World.TrainerVnum)
	assert.Equal(t, "north", cfg.World.TrainRoute[3000])
	assert.Equal(t, []string{"str", "con"}, cfg.World.TrainStats)
}

func TestLoadWorldFileRejectsMissingFile(t *testing.T) {
	_, err := LoadWorldFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// Validate never panics on arbitrary percent/duration inputs.
func TestValidateNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Behavior.FleeHPPercent = rapid.Float64Range(-1000, 1000).Draw(t, "flee")
		cfg.Run.Bots = rapid.IntRange(-10, 10000).Draw(t, "bots")
		_ = cfg.Validate()
	})
}
