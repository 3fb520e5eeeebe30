// Copyright (C) 2024 The Marquee Authors.
//
// This file is part of Marquee.
//
// Marquee is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Marquee is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Marquee.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/defsub/marquee"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite3"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
	StoreRedis    = "redis"
)

type ClientConfig struct {
	CacheDir  string
	MaxAge    time.Duration
	UseCache  bool
	UserAgent string
	Timeout   time.Duration
	Retries   uint
	Backoff   time.Duration
}

func (c *ClientConfig) Merge(o ClientConfig) {
	if o.CacheDir != "" {
		c.CacheDir = o.CacheDir
	}
	c.MaxAge = o.MaxAge
	c.UseCache = o.UseCache
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
}

type ImagesConfig struct {
	BaseURL string
	Size    string
}

type TMDBAPIConfig struct {
	Key      string
	Language string
	Endpoint string
	Images   ImagesConfig
}

type BackendConfig struct {
	URL string
}

type CatalogConfig struct {
	PageSize        int
	MaxItems        int
	RefreshInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StoreConfig struct {
	Driver  string
	Source  string
	LogMode bool
	Redis   RedisConfig
}

type SessionConfig struct {
	Secret string
	Issuer string
	Age    time.Duration
}

type FavoritesConfig struct {
	DemoTV     []int
	DemoActors []int
}

type ServerConfig struct {
	Listen string
	URL    string
}

type LogConfig struct {
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

type Config struct {
	Backend   BackendConfig
	Catalog   CatalogConfig
	Client    ClientConfig
	DataDir   string
	Favorites FavoritesConfig
	Log       LogConfig
	Server    ServerConfig
	Session   SessionConfig
	Store     StoreConfig
	TMDB      TMDBAPIConfig
}

func configDefaults(v *viper.Viper) {
	v.SetDefault("Backend.URL", "http://127.0.0.1:5000/api")

	v.SetDefault("Catalog.PageSize", "8")
	v.SetDefault("Catalog.MaxItems", "100")
	v.SetDefault("Catalog.RefreshInterval", "1h")

	v.SetDefault("Client.CacheDir", ".httpcache")
	v.SetDefault("Client.MaxAge", "5m")
	v.SetDefault("Client.UseCache", "false")
	v.SetDefault("Client.UserAgent", userAgent())
	v.SetDefault("Client.Timeout", "20s")
	v.SetDefault("Client.Retries", "3")
	v.SetDefault("Client.Backoff", "1s")

	v.SetDefault("DataDir", ".")

	// Game of Thrones, Lucifer, Stranger Things
	v.SetDefault("Favorites.DemoTV", []int{1399, 60574, 66732})
	// Tom Hanks, Jason Statham, Tom Holland
	v.SetDefault("Favorites.DemoActors", []int{1245, 976, 1136406})

	v.SetDefault("Log.MaxSize", "10")
	v.SetDefault("Log.MaxBackups", "3")
	v.SetDefault("Log.MaxAge", "28")

	v.SetDefault("Server.Listen", "127.0.0.1:3000")
	v.SetDefault("Server.URL", "http://127.0.0.1:3000") // w/o trailing slash

	v.SetDefault("Session.Issuer", marquee.AppName)
	v.SetDefault("Session.Age", "720h") // 30 days

	v.SetDefault("Store.Driver", StoreSQLite)
	v.SetDefault("Store.Source", "marquee.db")
	v.SetDefault("Store.LogMode", "false")
	v.SetDefault("Store.Redis.Addr", "127.0.0.1:6379")
	v.SetDefault("Store.Redis.DB", "0")

	v.SetDefault("TMDB.Language", "en-US")
	v.SetDefault("TMDB.Endpoint", "https://api.themoviedb.org/3")
	v.SetDefault("TMDB.Images.BaseURL", "https://image.tmdb.org/t/p/")
	v.SetDefault("TMDB.Images.Size", "w500")
}

func userAgent() string {
	return marquee.AppName + "/" + marquee.Version + " ( " + marquee.Contact + " ) "
}

func readConfig(v *viper.Viper) (*Config, error) {
	var config Config
	var pathRegexp = regexp.MustCompile(`(file|dir|source)$`)
	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return &config, err
		}
		// defaults and environment only
		err = nil
	}
	dir := filepath.Dir(v.ConfigFileUsed())
	for _, k := range v.AllKeys() {
		if pathRegexp.MatchString(k) {
			if k == "store.source" && v.GetString("store.driver") != StoreSQLite {
				// dsn, not a path
				continue
			}
			val, ok := v.Get(k).(string)
			if !ok || val == "" {
				continue
			}
			if strings.HasPrefix(val, "/") == false {
				v.Set(k, fmt.Sprintf("%s/%s", dir, val))
			}
		}
	}
	err = v.Unmarshal(&config)
	if err == nil {
		err = config.validate()
	}
	return &config, err
}

func (c *Config) validate() error {
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("invalid page size %d", c.Catalog.PageSize)
	}
	if c.Catalog.MaxItems <= 0 {
		return fmt.Errorf("invalid max items %d", c.Catalog.MaxItems)
	}
	return nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(marquee.AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// unmarshal only sees env values for keys viper already knows
	v.BindEnv("TMDB.Key")
	v.BindEnv("Session.Secret")
	v.BindEnv("Store.Redis.Password")
}

func TestConfig() (*Config, error) {
	testDir := os.Getenv("TEST_CONFIG")
	if testDir == "" {
		return nil, errors.New("missing test config")
	}
	v := viper.New()
	configDefaults(v)
	v.SetConfigFile(filepath.Join(testDir, "test.yaml"))
	v.SetDefault("Store.Source", filepath.Join(testDir, "marquee.db"))
	return readConfig(v)
}

var configFile, configPath, configName string

func SetConfigFile(path string) {
	configFile = path
}

func AddConfigPath(path string) {
	configPath = path
}

func SetConfigName(name string) {
	configName = name
}

func GetConfig() (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	if configName != "" {
		v.SetConfigName(configName)
	}
	configDefaults(v)
	bindEnv(v)
	return readConfig(v)
}

func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(marquee.AppName)
	configDefaults(v)
	bindEnv(v)
	return readConfig(v)
}

// DefaultConfig returns a config built only from defaults.
func DefaultConfig() *Config {
	v := viper.New()
	configDefaults(v)
	var config Config
	v.Unmarshal(&config)
	return &config
}
