package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Rooms    RoomsConfig    `mapstructure:"rooms"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type GameConfig struct {
	// CheatMode waives the fuel check on travel.
	CheatMode         bool    `mapstructure:"cheat_mode"`
	MarketEvents      bool    `mapstructure:"market_events"`
	EventChance       float64 `mapstructure:"event_chance"`
	MessageBoardSize  int     `mapstructure:"message_board_size"`
	DefaultMaxPlayers int     `mapstructure:"default_max_players"`
	CatalogPath       string  `mapstructure:"catalog_path"`
}

type RoomsConfig struct {
	// IdleTTL of zero keeps empty rooms forever.
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.path", "kzrk.db")
	v.SetDefault("game.cheat_mode", false)
	v.SetDefault("game.market_events", true)
	v.SetDefault("game.event_chance", 0.15)
	v.SetDefault("game.message_board_size", 50)
	v.SetDefault("game.default_max_players", 4)
	v.SetDefault("game.catalog_path", "")
	v.SetDefault("rooms.idle_ttl", time.Duration(0))
	v.SetDefault("rooms.sweep_interval", time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads defaults, then the optional config file at path, then KZRK_*
// environment variables (a .env file in the working directory is honored).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KZRK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Database.Enabled && strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required when the database is enabled"))
	}
	if c.Game.EventChance < 0 || c.Game.EventChance > 1 {
		errs = append(errs, fmt.Errorf("game.event_chance must be within [0, 1], got %v", c.Game.EventChance))
	}
	if c.Game.MessageBoardSize < 1 {
		errs = append(errs, fmt.Errorf("game.message_board_size must be at least 1, got %d", c.Game.MessageBoardSize))
	}
	if c.Game.DefaultMaxPlayers < 1 || c.Game.DefaultMaxPlayers > 8 {
		errs = append(errs, fmt.Errorf("game.default_max_players must be between 1 and 8, got %d", c.Game.DefaultMaxPlayers))
	}
	if c.Rooms.IdleTTL < 0 {
		errs = append(errs, errors.New("rooms.idle_ttl cannot be negative"))
	}
	if c.Rooms.IdleTTL > 0 && c.Rooms.SweepInterval <= 0 {
		errs = append(errs, errors.New("rooms.sweep_interval must be positive when rooms.idle_ttl is set"))
	}

	return errors.Join(errs...)
}
