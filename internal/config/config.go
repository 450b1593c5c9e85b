// Package config loads the server configuration.
//
// Sources, later ones overriding earlier ones:
//  1. built-in defaults
//  2. a YAML file: the explicit path, $INVENTORY_CONFIG or ./inventory.yaml
//  3. a .env file in the working directory, if present
//  4. INVENTORY_* environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "inventory.yaml"

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Session  SessionConfig  `yaml:"session"`
	Password PasswordConfig `yaml:"password"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	// Path is an optional file receiving a copy of every log line.
	Path string `yaml:"path"`
}

type SessionConfig struct {
	// Secret signs session tokens. When empty, one is generated and kept in
	// the database.
	Secret       string        `yaml:"secret"`
	TTL          time.Duration `yaml:"ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "inventory.sqlite3"},
		Server:   ServerConfig{Addr: ":8080"},
		Session:  SessionConfig{TTL: 7 * 24 * time.Hour},
		Password: PasswordConfig{BcryptCost: 12},
	}
}

// Load builds the configuration. path may be empty, in which case the file is
// looked up; a missing file is only an error when path was given explicitly.
// It returns the file that was read, or "" if none was.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FindConfigPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, path, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			path = ""
		default:
			return nil, path, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, path, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// FindConfigPath returns $INVENTORY_CONFIG if set, otherwise DefaultPath if it
// exists, otherwise "".
func FindConfigPath() string {
	if p := os.Getenv("INVENTORY_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("INVENTORY_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("INVENTORY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("INVENTORY_LOG"); v != "" {
		c.Log.Path = v
	}
	if v := os.Getenv("INVENTORY_SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("INVENTORY_SECURE_COOKIE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INVENTORY_SECURE_COOKIE: %w", err)
		}
		c.Session.SecureCookie = secure
	}
	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path must be set")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	return nil
}
