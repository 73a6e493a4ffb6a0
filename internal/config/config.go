package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultValidity es la vigencia fija de un certificado (365 días).
const DefaultValidity = 365 * 24 * time.Hour

// MinRSABits es el tamaño mínimo aceptado para la clave de firma.
const MinRSABits = 2048

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr         string `yaml:"addr"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	// PublicURL es la base de los links de verificación ({public_url}/verify?token=...).
	PublicURL string `yaml:"public_url"`

	Keys struct {
		PrivatePath string `yaml:"private_path"`
		PublicPath  string `yaml:"public_path"`
		Bits        int    `yaml:"bits"`
	} `yaml:"keys"`

	Certificate struct {
		Issuer   string `yaml:"issuer"`
		Validity string `yaml:"validity"`
	} `yaml:"certificate"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Store struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"store"`
}

// Load lee el YAML en path (si existe), aplica overrides por env, defaults y valida.
// Un path vacío o inexistente no es error: se usa solo env + defaults.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default devuelve la configuración por defecto (sin leer archivo ni env).
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost:5000"
	}
	if c.Keys.PrivatePath == "" {
		c.Keys.PrivatePath = "private.pem"
	}
	if c.Keys.PublicPath == "" {
		c.Keys.PublicPath = "public.pem"
	}
	if c.Keys.Bits == 0 {
		c.Keys.Bits = MinRSABits
	}
	if c.Certificate.Issuer == "" {
		c.Certificate.Issuer = "Mi Academia"
	}
	if c.Certificate.Validity == "" {
		c.Certificate.Validity = DefaultValidity.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Store.Kind == "" {
		c.Store.Kind = "memory"
	}
	if c.Store.Redis.Prefix == "" {
		c.Store.Redis.Prefix = "hellocert"
	}
	if c.Store.Memory.DefaultTTL == "" {
		c.Store.Memory.DefaultTTL = DefaultValidity.String()
	}
}

// Validate chequea invariantes que harían fallar el arranque más tarde.
func (c *Config) Validate() error {
	if c.Keys.Bits < MinRSABits {
		return fmt.Errorf("config: keys.bits must be >= %d (got %d)", MinRSABits, c.Keys.Bits)
	}
	if strings.TrimSpace(c.Certificate.Issuer) == "" {
		return errors.New("config: certificate.issuer is required")
	}
	if v, err := time.ParseDuration(c.Certificate.Validity); err != nil || v <= 0 {
		return fmt.Errorf("config: invalid certificate.validity %q", c.Certificate.Validity)
	}
	u, err := url.Parse(c.PublicURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: public_url must be an absolute http(s) URL (got %q)", c.PublicURL)
	}
	for name, d := range map[string]string{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"store.memory.default_ttl": c.Store.Memory.DefaultTTL,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", name, d, err)
		}
	}
	switch c.Store.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Store.Redis.Addr) == "" {
			return errors.New("config: store.redis.addr is required when store.kind=redis")
		}
	default:
		return fmt.Errorf("config: unknown store.kind %q (memory|redis)", c.Store.Kind)
	}
	return nil
}

// ValidityDuration devuelve certificate.validity ya parseada.
func (c *Config) ValidityDuration() time.Duration {
	d, err := time.ParseDuration(c.Certificate.Validity)
	if err != nil || d <= 0 {
		return DefaultValidity
	}
	return d
}

// ReadTimeout devuelve server.read_timeout parseado.
func (c *Config) ReadTimeout() time.Duration { return mustDur(c.Server.ReadTimeout, 10*time.Second) }

// WriteTimeout devuelve server.write_timeout parseado.
func (c *Config) WriteTimeout() time.Duration { return mustDur(c.Server.WriteTimeout, 30*time.Second) }

// MemoryTTL devuelve store.memory.default_ttl parseado.
func (c *Config) MemoryTTL() time.Duration { return mustDur(c.Store.Memory.DefaultTTL, DefaultValidity) }

func mustDur(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER: SERVER_ADDR gana sobre PORT (PORT es lo que setean los PaaS)
	if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_READ_TIMEOUT"); ok {
		c.Server.ReadTimeout = v
	}
	if v, ok := getEnvStr("SERVER_WRITE_TIMEOUT"); ok {
		c.Server.WriteTimeout = v
	}

	if v, ok := getEnvStr("PUBLIC_URL"); ok {
		c.PublicURL = strings.TrimRight(v, "/")
	}

	// KEYS
	if v, ok := getEnvStr("KEYS_PRIVATE_PATH"); ok {
		c.Keys.PrivatePath = v
	}
	if v, ok := getEnvStr("KEYS_PUBLIC_PATH"); ok {
		c.Keys.PublicPath = v
	}
	if v, ok := getEnvInt("KEYS_BITS"); ok {
		c.Keys.Bits = v
	}

	// CERTIFICATE
	if v, ok := getEnvStr("CERT_ISSUER"); ok {
		c.Certificate.Issuer = v
	}
	if v, ok := getEnvStr("CERT_VALIDITY"); ok {
		c.Certificate.Validity = v
	}

	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// STORE
	if v, ok := getEnvStr("STORE_KIND"); ok {
		c.Store.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Store.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Store.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Store.Redis.Prefix = v
	}
	if v, ok := getEnvStr("STORE_MEMORY_DEFAULT_TTL"); ok {
		c.Store.Memory.DefaultTTL = v
	}
}
