package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeTerminal = "terminal"
	ModeServer   = "server"
	ModeBatch    = "batch"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env-default:"info"`
	Mode              string        `yaml:"mode" env-default:"terminal"`
	HTTPPort          string        `yaml:"http-port" env-default:"9090"`
	FirstAgent        string        `yaml:"first-agent" env-default:"human"`
	SecondAgent       string        `yaml:"second-agent" env-default:"tactics"`
	HumanPollInterval time.Duration `yaml:"human-poll-interval" env-default:"100ms"`
	Games             int           `yaml:"games" env-default:"100"`
	Seed              int64         `yaml:"seed" env-default:"0"`
	Network           Network       `yaml:"network"`
	Redis             Redis         `yaml:"redis"`
}

type Network struct {
	HiddenLayers []int   `yaml:"hidden-layers" env-default:"256,256"`
	Record       bool    `yaml:"record" env-default:"false"`
	LearningRate float64 `yaml:"learning-rate" env-default:"0.01"`
	Epochs       int     `yaml:"epochs" env-default:"1"`
	WeightsFile  string  `yaml:"weights-file" env-default:""`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env-default:"false"`
	Host    string `yaml:"host" env-default:"localhost"`
	Port    string `yaml:"port" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
