package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"TICTACTOE_LOG_LEVEL" env-default:"info"`
	Log      Log    `yaml:"log"`
	Server   Server `yaml:"server"`
	Client   Client `yaml:"client"`
	Redis    Redis  `yaml:"redis"`
}

type Log struct {
	File       string `yaml:"file" env:"TICTACTOE_LOG_FILE" env-default:""`
	MaxSizeMB  int    `yaml:"max-size-mb" env:"TICTACTOE_LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max-backups" env:"TICTACTOE_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `yaml:"max-age-days" env:"TICTACTOE_LOG_MAX_AGE_DAYS" env-default:"28"`
}

type Server struct {
	Host         string        `yaml:"host" env:"TICTACTOE_SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"TICTACTOE_SERVER_PORT" env-default:"12345"`
	MoveTimeout  time.Duration `yaml:"move-timeout" env:"TICTACTOE_MOVE_TIMEOUT" env-default:"0s"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"TICTACTOE_WRITE_TIMEOUT" env-default:"10s"`
}

type Client struct {
	Host string `yaml:"host" env:"TICTACTOE_CLIENT_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"TICTACTOE_CLIENT_PORT" env-default:"12345"`
}

type Redis struct {
	Enabled bool          `yaml:"enabled" env:"TICTACTOE_REDIS_ENABLED" env-default:"false"`
	Host    string        `yaml:"host" env:"TICTACTOE_REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"TICTACTOE_REDIS_PORT" env-default:"6379"`
	TTL     time.Duration `yaml:"ttl" env:"TICTACTOE_REDIS_TTL" env-default:"1h"`
}

// Load reads the yaml file at path when it exists, otherwise only the environment.
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

	return config, nil
}

// MustLoad - load all configurations, panics on failure.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Server) GetAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

func (that *Client) GetAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

func (that *Redis) GetRedisAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}
