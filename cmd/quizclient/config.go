package main

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Poll   PollConfig
	Lobby  LobbyConfig
	Log    LogConfig
}

type ServerConfig struct {
	URL     string
	Timeout time.Duration
}

type AuthConfig struct {
	Email    string
	Password string
	Token    string
}

type PollConfig struct {
	InboxInterval  time.Duration
	StatusInterval time.Duration
}

type LobbyConfig struct {
	Strategy    string
	SettleDelay time.Duration
	MaxWait     time.Duration
}

type LogConfig struct {
	Level string
}

// LoadConfig reads quizclient.yaml from the working directory or ~/.quizduel when present.
// QUIZ_* environment variables override file values, e.g. QUIZ_AUTH_TOKEN.
func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.quizduel")

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.url", "http://localhost:8080/api/v1")
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.token", "")
	v.SetDefault("poll.inboxinterval", 5*time.Second)
	v.SetDefault("poll.statusinterval", 3*time.Second)
	v.SetDefault("lobby.strategy", "retry")
	v.SetDefault("lobby.settledelay", 3*time.Second)
	v.SetDefault("lobby.maxwait", 15*time.Second)
	v.SetDefault("log.level", "warn")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Server.URL == "" {
		return nil, errors.New("server.url is required")
	}
	return &c, nil
}
