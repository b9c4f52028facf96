package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Notebook Notebook `yaml:"notebook"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	TemplateDir   string `yaml:"templateDir"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Notebook struct {
	FQDN            string `yaml:"fqdn"`
	SessionSecret   string `yaml:"sessionSecret"`
	SessionHours    int    `yaml:"sessionHours"`
	ListingCacheSec int    `yaml:"listingCacheSec"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Server.TemplateDir == "" {
		config.Server.TemplateDir = "templates"
	}
	if config.Notebook.SessionHours <= 0 {
		config.Notebook.SessionHours = 24
	}
	if config.Notebook.ListingCacheSec <= 0 {
		config.Notebook.ListingCacheSec = 30
	}

	return config, nil
}

// SessionTTL is the lifetime of issued session tokens.
func (n Notebook) SessionTTL() time.Duration {
	return time.Duration(n.SessionHours) * time.Hour
}

// ListingCacheTTL is how long a cached listing stays fresh.
func (n Notebook) ListingCacheTTL() time.Duration {
	return time.Duration(n.ListingCacheSec) * time.Second
}
