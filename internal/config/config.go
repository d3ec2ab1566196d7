// Package config provides Viper-based configuration loading for the mudload
// load generator.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConnectionConfig holds the MUD server endpoint settings.
type ConnectionConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	TLS  bool   `mapstructure:"tls"`
	// ConnectTimeout bounds the TCP/TLS handshake.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// RecvBufferSize is the per-read buffer size for Connection.Recv.
	RecvBufferSize int `mapstructure:"recv_buffer_size"`
}

// Addr returns the "host:port" dial address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (c ConnectionConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AccountsConfig holds authentication settings for the bot fleet.
//
// Invariant: exactly one of AccountsFile or (User and Password) is set.
type AccountsConfig struct {
	AccountsFile string `mapstructure:"accounts_file"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
}

// RunConfig holds coordinator run settings.
type RunConfig struct {
	Bots           int           `mapstructure:"bots"`
	Duration       time.Duration `mapstructure:"duration"`
	StaggerDelay   time.Duration `mapstructure:"stagger_delay"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	StatusInterval time.Duration `mapstructure:"status_interval"`
	LoginTimeout   time.Duration `mapstructure:"login_timeout"`
}

// BehaviorConfig holds thresholds consumed by the behavior library (C7).
type BehaviorConfig struct {
	Targets           []string      `mapstructure:"targets"`
	FleeHPPercent     float64       `mapstructure:"flee_hp_percent"`
	RestHPPercent     float64       `mapstructure:"rest_hp_percent"`
	RestManaPercent   float64       `mapstructure:"rest_mana_percent"`
	RestMovePercent   float64       `mapstructure:"rest_move_percent"`
	AttackHPPercent   float64       `mapstructure:"attack_hp_percent"`
	CriticalHPPercent float64       `mapstructure:"critical_hp_percent"`
	DeepRestPercent   float64       `mapstructure:"deep_rest_hp_percent"`
	MaxLevelDiff      int           `mapstructure:"max_level_diff"`
	MinCommandDelay   time.Duration `mapstructure:"min_command_delay"`
	ScriptFile        string        `mapstructure:"script_file"`
}

// CharacterConfig holds the answers sent during character creation, for
// accounts new to the server (spec.md §4.5 CREATING_CHARACTER prompts).
type CharacterConfig struct {
	Race      string `mapstructure:"race"`
	Class     string `mapstructure:"class"`
	Sex       string `mapstructure:"sex"`
	Alignment string `mapstructure:"alignment"`
	Weapon    string `mapstructure:"weapon"`
}

// WorldConfig holds the static, server-specific room/route data the
// navigation-dependent behaviors need. Per spec.md §1's non-goal ("modeling
// the server's world"), this is treated purely as static data supplied by
// the operator — the load generator never discovers it by exploring.
// Every field is optional; a behavior that needs one is only registered by
// the coordinator when its data is present. The same struct doubles as the
// shape of the optional standalone world file named by Config.WorldFile —
// mapstructure and yaml tags agree field-for-field so one struct serves
// both loaders.
type WorldConfig struct {
	BotResetEntranceVnum int    `mapstructure:"bot_reset_entrance_vnum" yaml:"bot_reset_entrance_vnum"`
	BotResetCommand      string `mapstructure:"bot_reset_command" yaml:"bot_reset_command"`

	TrainerVnum int            `mapstructure:"trainer_vnum" yaml:"trainer_vnum"`
	TrainRoute  map[int]string `mapstructure:"train_route" yaml:"train_route"`
	TrainStats  []string       `mapstructure:"train_stats" yaml:"train_stats"`
	TrainCount  int            `mapstructure:"train_count" yaml:"train_count"`

	PractitionerVnum int            `mapstructure:"practitioner_vnum" yaml:"practitioner_vnum"`
	PracticeRoute    map[int]string `mapstructure:"practice_route" yaml:"practice_route"`
	PracticeSkills   []string       `mapstructure:"practice_skills" yaml:"practice_skills"`
	PracticeCount    int            `mapstructure:"practice_count" yaml:"practice_count"`

	ShopVnum      int            `mapstructure:"shop_vnum" yaml:"shop_vnum"`
	HomeVnum      int            `mapstructure:"home_vnum" yaml:"home_vnum"`
	RouteToShop   map[int]string `mapstructure:"route_to_shop" yaml:"route_to_shop"`
	RouteFromShop map[int]string `mapstructure:"route_from_shop" yaml:"route_from_shop"`
	MinMoney      int            `mapstructure:"min_money" yaml:"min_money"`
	FoodItem      string         `mapstructure:"food_item" yaml:"food_item"`
	DrinkItem     string         `mapstructure:"drink_item" yaml:"drink_item"`

	PatrolRooms []int          `mapstructure:"patrol_rooms" yaml:"patrol_rooms"`
	PatrolRoute map[int]string `mapstructure:"patrol_route" yaml:"patrol_route"`

	ReturnToCageRoute map[int]string `mapstructure:"return_to_cage_route" yaml:"return_to_cage_route"`

	CombatSkills []string `mapstructure:"combat_skills" yaml:"combat_skills"`
	SkillOdds    float64  `mapstructure:"skill_odds" yaml:"skill_odds"`
}

// MetricsConfig holds metrics reporting settings.
type MetricsConfig struct {
	OutputPath    string `mapstructure:"output_path"`
	LatencyWindow int    `mapstructure:"latency_window"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
}

// Config is the top-level application configuration.
type Config struct {
	Connection ConnectionConfig `mapstructure:"connection"`
	Accounts   AccountsConfig   `mapstructure:"accounts"`
	Run        RunConfig        `mapstructure:"run"`
	Behavior   BehaviorConfig   `mapstructure:"behavior"`
	Character  CharacterConfig  `mapstructure:"character"`
	World      WorldConfig      `mapstructure:"world"`
	// WorldFile, when set, names a standalone YAML file holding a
	// WorldConfig (ruleset.LoadRegions-style: one self-contained file of
	// static route data, loaded separately from the rest of the
	// operator's config so route tables for different server builds can
	// be swapped without touching connection/behavior settings).
	// LoadWorldFile's result is merged into World field-by-field wherever
	// the inline World section left a field at its zero value.
	WorldFile string        `mapstructure:"world_file"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
	Logging   LoggingConfig `mapstructure:"logging"`
}

// Default returns a Config populated with the documented defaults from
// spec.md §4 and §6.
//
// Postcondition: Returns a Config that passes Validate() once a host and
// either an accounts file or a user/password pair are set.
func Default() Config {
	return Config{
		Connection: ConnectionConfig{
			Port:           4000,
			ConnectTimeout: 60 * time.Second,
			RecvBufferSize: 4096,
		},
		Run: RunConfig{
			Bots:           0,
			Duration:       5 * time.Minute,
			StaggerDelay:   500 * time.Millisecond,
			TickInterval:   500 * time.Millisecond,
			StatusInterval: 10 * time.Second,
			LoginTimeout:   60 * time.Second,
		},
		Behavior: BehaviorConfig{
			FleeHPPercent:     20,
			RestHPPercent:     70,
			RestManaPercent:   70,
			RestMovePercent:   50,
			AttackHPPercent:   40,
			CriticalHPPercent: 10,
			DeepRestPercent:   30,
			MaxLevelDiff:      3,
			MinCommandDelay:   250 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			LatencyWindow: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from the YAML file at path, falling back to
// Default() for any field the file does not set.
//
// Precondition: if path is non-empty, it must name a readable YAML file.
// Postcondition: Returns a Config merged over Default(), or a non-nil error.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load: reading %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("MUDLOAD")
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshaling: %w", err)
	}

	if cfg.WorldFile != "" {
		world, err := LoadWorldFile(cfg.WorldFile)
		if err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		cfg.World = mergeWorld(cfg.World, world)
	}

	return &cfg, nil
}

// LoadWorldFile reads a standalone WorldConfig YAML file, grounded on the
// teacher's ruleset.LoadRegions single-file-unmarshal pattern.
//
// Precondition: path must name a readable YAML file.
func LoadWorldFile(path string) (WorldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorldConfig{}, fmt.Errorf("config.LoadWorldFile: reading %s: %w", path, err)
	}
	var w WorldConfig
	if err := yaml.Unmarshal(data, &w); err != nil {
		return WorldConfig{}, fmt.Errorf("config.LoadWorldFile: parsing %s: %w", path, err)
	}
	return w, nil
}

// mergeWorld overlays file onto base, keeping base's value for every field
// file leaves at its zero value — the inline "world:" config section (if
// any) always wins over the standalone file for fields it sets.
func mergeWorld(base, file WorldConfig) WorldConfig {
	if base.BotResetEntranceVnum == 0 {
		base.BotResetEntranceVnum = file.BotResetEntranceVnum
	}
	if base.BotResetCommand == "" {
		base.BotResetCommand = file.BotResetCommand
	}
	if base.TrainerVnum == 0 {
		base.TrainerVnum = file.TrainerVnum
	}
	if len(base.TrainRoute) == 0 {
		base.TrainRoute = file.TrainRoute
	}
	if len(base.TrainStats) == 0 {
		base.TrainStats = file.TrainStats
	}
	if base.TrainCount == 0 {
		base.TrainCount = file.TrainCount
	}
	if base.PractitionerVnum == 0 {
		base.PractitionerVnum = file.PractitionerVnum
	}
	if len(base.PracticeRoute) == 0 {
		base.PracticeRoute = file.PracticeRoute
	}
	if len(base.PracticeSkills) == 0 {
		base.PracticeSkills = file.PracticeSkills
	}
	if base.PracticeCount == 0 {
		base.PracticeCount = file.PracticeCount
	}
	if base.ShopVnum == 0 {
		base.ShopVnum = file.ShopVnum
	}
	if base.HomeVnum == 0 {
		base.HomeVnum = file.HomeVnum
	}
	if len(base.RouteToShop) == 0 {
		base.RouteToShop = file.RouteToShop
	}
	if len(base.RouteFromShop) == 0 {
		base.RouteFromShop = file.RouteFromShop
	}
	if base.MinMoney == 0 {
		base.MinMoney = file.MinMoney
	}
	if base.FoodItem == "" {
		base.FoodItem = file.FoodItem
	}
	if base.DrinkItem == "" {
		base.DrinkItem = file.DrinkItem
	}
	if len(base.PatrolRooms) == 0 {
		base.PatrolRooms = file.PatrolRooms
	}
	if len(base.PatrolRoute) == 0 {
		base.PatrolRoute = file.PatrolRoute
	}
	if len(base.ReturnToCageRoute) == 0 {
		base.ReturnToCageRoute = file.ReturnToCageRoute
	}
	if len(base.CombatSkills) == 0 {
		base.CombatSkills = file.CombatSkills
	}
	if base.SkillOdds == 0 {
		base.SkillOdds = file.SkillOdds
	}
	return base
}

// Validate aggregates every structural invariant a malformed configuration
// could violate, per spec.md §6 and §7 ("configuration error" → exit 1).
//
// Postcondition: Returns nil if cfg is internally consistent.
func (c Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Connection.Host) == "" {
		errs = append(errs, "connection.host must not be empty")
	}
	if c.Connection.Port <= 0 || c.Connection.Port > 65535 {
		errs = append(errs, "connection.port must be in (0, 65535]")
	}

	hasAccountsFile := strings.TrimSpace(c.Accounts.AccountsFile) != ""
	hasUserPass := strings.TrimSpace(c.Accounts.User) != "" && c.Accounts.Password != ""
	switch {
	case hasAccountsFile && hasUserPass:
		errs = append(errs, "accounts_file and user/password are mutually exclusive")
	case !hasAccountsFile && !hasUserPass:
		errs = append(errs, "one of accounts_file or user/password must be set")
	}

	if c.Run.Bots < 0 {
		errs = append(errs, "run.bots must be >= 0")
	}
	if c.Run.Duration <= 0 {
		errs = append(errs, "run.duration must be positive")
	}
	if c.Run.StaggerDelay < 0 {
		errs = append(errs, "run.stagger_delay must be >= 0")
	}
	if c.Run.TickInterval <= 0 {
		errs = append(errs, "run.tick_interval must be positive")
	}

	if c.Behavior.FleeHPPercent < 0 || c.Behavior.FleeHPPercent > 100 {
		errs = append(errs, "behavior.flee_hp_percent must be in [0, 100]")
	}
	if c.Behavior.MinCommandDelay < 0 {
		errs = append(errs, "behavior.min_command_delay must be >= 0")
	}

	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}
