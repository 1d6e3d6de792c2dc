package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	PageSize       int           `yaml:"page_size" validate:"required,min=1,max=200"`
	SearchPageSize int           `yaml:"search_page_size" validate:"required,min=1,max=200"`
	DefaultSite    string        `yaml:"default_site" validate:"required"`
	JwtTTL         time.Duration `yaml:"jwt_ttl" validate:"required"` // in hours
	SecureCookies  bool          `yaml:"secure_cookies"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	CacheTTL       time.Duration `yaml:"cache_ttl"` // in seconds, 0 means 60
	HttpPort       int           `yaml:"http_port"`
}

type Private struct {
	Pg     Pg     `yaml:"pg" validate:"required"`
	JwtKey string `yaml:"jwt_key" validate:"required"`
	Redis  Redis  `yaml:"redis"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
	SSLMode  string `yaml:"sslmode"`
}

// empty Addr means in-process cache
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL * time.Hour
}

func (s *Config) CacheTTL() time.Duration {
	if s.Public.CacheTTL <= 0 {
		return 60 * time.Second
	}
	return s.Public.CacheTTL * time.Second
}

// HttpAddr prefers the PORT env variable over the configured port.
func (s *Config) HttpAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	if s.Public.HttpPort > 0 {
		return ":" + strconv.Itoa(s.Public.HttpPort)
	}
	return ":8080"
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err = yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

func mustValidate(name string, v interface{}) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(v); err != nil {
		panic(fmt.Sprintf("invalid %s config: %v", name, err))
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	mustValidate("public", public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	mustValidate("private", private)

	return &Config{public, private}
}
