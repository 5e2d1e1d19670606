package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"turnsync/internal/db"
	"turnsync/internal/engine"
	"turnsync/internal/host"
	"turnsync/internal/schedule"

	"github.com/spf13/viper"
)

type EngineConfig struct {
	Path    string        `mapstructure:"path"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type HostConfig struct {
	Interval            time.Duration `mapstructure:"interval"`
	DistributeOnFailure bool          `mapstructure:"distribute_on_failure"`
}

type WatchConfig struct {
	Debounce     time.Duration `mapstructure:"debounce"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BufferSize   int           `mapstructure:"buffer_size"`
	IgnoreList   []string      `mapstructure:"ignore_list"`
}

type GameConfig struct {
	Name     string `mapstructure:"name"`
	Schedule string `mapstructure:"schedule"`
}

type Config struct {
	LocalFolder string       `mapstructure:"local_folder"`
	HostFolder  string       `mapstructure:"host_folder"`
	Engine      EngineConfig `mapstructure:"engine"`
	Host        HostConfig   `mapstructure:"host"`
	Watch       WatchConfig  `mapstructure:"watch"`
	Games       []GameConfig `mapstructure:"games"`
	DaemonPort  int          `mapstructure:"daemon_port"`
	DBPath      string       `mapstructure:"db_path"`
}

var Default = Config{
	Engine: EngineConfig{
		Args: engine.DefaultArgs,
	},
	Host: HostConfig{
		Interval: host.DefaultInterval,
	},
	Watch: WatchConfig{
		Debounce:   500 * time.Millisecond,
		BufferSize: 100,
		IgnoreList: []string{".git", ".DS_Store", "*.tmp", "*.swp"},
	},
	DaemonPort: 9001,
	DBPath:     db.MemoryDSN,
}

// Error reports a missing or invalid setting. It is fatal at startup.
type Error struct {
	Key string
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration %q: %s", e.Key, e.Msg)
}

// Dir is where the config file lives unless --config names one.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}

	return filepath.Join(home, ".turnsync"), nil
}

// FilePath returns the absolute path of the config file Load would read:
// path itself when set, otherwise the default file if it exists. It
// returns "" when there is no file, which leaves Load on defaults and env.
func FilePath(path string) (string, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		return abs, nil
	}

	dir, err := Dir()
	if err != nil {
		return "", err
	}

	for _, ext := range viper.SupportedExts {
		candidate := filepath.Join(dir, "config."+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}

// Load reads the config file and TURNSYNC_ environment overrides. A missing
// default config file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		configDir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
	}

	v.SetDefault("local_folder", Default.LocalFolder)
	v.SetDefault("host_folder", Default.HostFolder)
	v.SetDefault("engine.path", Default.Engine.Path)
	v.SetDefault("engine.args", Default.Engine.Args)
	v.SetDefault("engine.timeout", Default.Engine.Timeout)
	v.SetDefault("host.interval", Default.Host.Interval)
	v.SetDefault("host.distribute_on_failure", Default.Host.DistributeOnFailure)
	v.SetDefault("watch.debounce", Default.Watch.Debounce)
	v.SetDefault("watch.poll_interval", Default.Watch.PollInterval)
	v.SetDefault("watch.buffer_size", Default.Watch.BufferSize)
	v.SetDefault("watch.ignore_list", Default.Watch.IgnoreList)
	v.SetDefault("daemon_port", Default.DaemonPort)
	v.SetDefault("db_path", Default.DBPath)

	v.SetEnvPrefix("TURNSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Schedules parses every configured game, in configuration order. The
// first invalid entry aborts with a *schedule.ParseError or *Error.
func (c *Config) Schedules() ([]schedule.GameSchedule, error) {
	seen := make(map[string]bool, len(c.Games))
	games := make([]schedule.GameSchedule, 0, len(c.Games))

	for i, g := range c.Games {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, &Error{Key: fmt.Sprintf("games[%d].name", i), Msg: "game name is empty"}
		}
		if seen[strings.ToLower(name)] {
			return nil, &Error{Key: fmt.Sprintf("games[%d].name", i), Msg: fmt.Sprintf("game %s is listed twice", name)}
		}
		seen[strings.ToLower(name)] = true

		s, err := schedule.Parse(name, g.Schedule)
		if err != nil {
			return nil, err
		}
		games = append(games, s)
	}

	return games, nil
}
