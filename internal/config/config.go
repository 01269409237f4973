package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var ErrUnknownStorage = errors.New("unknown storage")

type Config struct {
	LogLevel  string `yaml:"log-level" env:"CLIPGAMES_LOG_LEVEL" env-default:"info"`
	HTTPPort  string `yaml:"http-port" env:"CLIPGAMES_HTTP_PORT" env-default:"5000"`
	PublicURL string `yaml:"public-url" env:"CLIPGAMES_PUBLIC_URL"`
	Storage   string `yaml:"storage" env:"CLIPGAMES_STORAGE" env-default:"memory"`
	Redis     Redis  `yaml:"redis"`
	RPS       RPS    `yaml:"rps"`
	Poll      Poll   `yaml:"poll"`
}

type Redis struct {
	Host string `yaml:"host" env:"CLIPGAMES_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"CLIPGAMES_REDIS_PORT" env-default:"6379"`
}

type RPS struct {
	// 0 plays rounds until someone leaves.
	WinningScore int `yaml:"winning-score" env:"CLIPGAMES_RPS_WINNING_SCORE" env-default:"0"`
}

type Poll struct {
	Interval    time.Duration `yaml:"interval" env:"CLIPGAMES_POLL_INTERVAL" env-default:"1s"`
	RevealDelay time.Duration `yaml:"reveal-delay" env:"CLIPGAMES_POLL_REVEAL_DELAY" env-default:"1500ms"`
}

// Load - reads path when it exists, otherwise the environment only.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) validate() error {
	switch that.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage)
	}

	if that.RPS.WinningScore < 0 {
		return fmt.Errorf("rps winning score must not be negative: %d", that.RPS.WinningScore)
	}

	if that.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive: %s", that.Poll.Interval)
	}

	if that.Poll.RevealDelay < 0 {
		return fmt.Errorf("poll reveal delay must not be negative: %s", that.Poll.RevealDelay)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
