package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"p2plending/internal/domain/loan"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort string `yaml:"app_port"`
	AppEnv  string `yaml:"app_env"`

	DBDriver   string `yaml:"db_driver"`
	DBLogLevel string `yaml:"db_log_level"`
	SQLitePath string `yaml:"sqlite_path"`
	MySQLHost  string `yaml:"mysql_host"`
	MySQLPort  string `yaml:"mysql_port"`
	MySQLDB    string `yaml:"mysql_db"`
	MySQLUser  string `yaml:"mysql_user"`
	MySQLPass  string `yaml:"mysql_pass"`

	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`

	IdempTTLSecs int `yaml:"idempotency_ttl_seconds"`

	CustodyAccount    string        `yaml:"custody_account"`
	LifetimeThreshold time.Duration `yaml:"storage_lifetime_threshold"`
	LifetimeBump      time.Duration `yaml:"storage_lifetime_bump"`

	// OracleEndpoints maps an oracle name used in seize conditions to the
	// base URL of its price feed.
	OracleEndpoints map[string]string `yaml:"oracle_endpoints"`
	OracleCacheTTL  time.Duration     `yaml:"oracle_cache_ttl"`
	OracleTimeout   time.Duration     `yaml:"oracle_timeout"`

	EventSink    string   `yaml:"event_sink"`
	EventChannel string   `yaml:"event_channel"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	AuthHMACSecret string        `yaml:"auth_hmac_secret"`
	AuthIssuer     string        `yaml:"auth_issuer"`
	AuthClockSkew  time.Duration `yaml:"auth_clock_skew"`

	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
}

const day = 24 * time.Hour

func defaults() *Config {
	return &Config{
		AppPort:    "8080",
		AppEnv:     "dev",
		DBDriver:   "mysql",
		DBLogLevel: "warn",
		SQLitePath: "p2plending.db",
		MySQLHost:  "mysql",
		MySQLPort:  "3306",
		MySQLDB:    "lending",
		MySQLUser:  "lending",
		MySQLPass:  "lending",

		RedisAddr:    "redis:6379",
		IdempTTLSecs: 300,

		CustodyAccount:    "custody",
		LifetimeThreshold: 29 * day,
		LifetimeBump:      30 * day,

		OracleEndpoints: map[string]string{},
		OracleCacheTTL:  30 * time.Second,
		OracleTimeout:   5 * time.Second,

		EventSink:    "log",
		EventChannel: "lending.events",
		KafkaTopic:   "lending.events",

		AuthIssuer:    "",
		AuthClockSkew: 30 * time.Second,

		LogLevel:      "info",
		LogFormat:     "json",
		LogMaxSizeMB:  100,
		LogMaxBackups: 5,
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getenvDuration(k string, d time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return d, fmt.Errorf("%s: %w", k, err)
	}
	return dur, nil
}

// Load builds the config from defaults, then the YAML file named by
// APP_CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	c := defaults()
	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.AppPort = getenv("APP_PORT", c.AppPort)
	c.AppEnv = getenv("APP_ENV", c.AppEnv)

	c.DBDriver = strings.ToLower(getenv("DB_DRIVER", c.DBDriver))
	c.DBLogLevel = getenv("DB_LOG_LEVEL", c.DBLogLevel)
	c.SQLitePath = getenv("SQLITE_PATH", c.SQLitePath)
	c.MySQLHost = getenv("MYSQL_HOST", c.MySQLHost)
	c.MySQLPort = getenv("MYSQL_PORT", c.MySQLPort)
	c.MySQLDB = getenv("MYSQL_DB", c.MySQLDB)
	c.MySQLUser = getenv("MYSQL_USER", c.MySQLUser)
	c.MySQLPass = getenv("MYSQL_PASS", c.MySQLPass)

	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.CustodyAccount = getenv("CUSTODY_ACCOUNT", c.CustodyAccount)

	c.EventSink = strings.ToLower(getenv("EVENT_SINK", c.EventSink))
	c.EventChannel = getenv("EVENT_CHANNEL", c.EventChannel)
	c.KafkaTopic = getenv("KAFKA_TOPIC", c.KafkaTopic)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitList(v)
	}

	c.AuthHMACSecret = getenv("AUTH_HMAC_SECRET", c.AuthHMACSecret)
	c.AuthIssuer = getenv("AUTH_ISSUER", c.AuthIssuer)

	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getenv("LOG_FILE", c.LogFile)

	if v := os.Getenv("ORACLE_ENDPOINTS"); v != "" {
		eps, err := ParseEndpoints(v)
		if err != nil {
			return err
		}
		c.OracleEndpoints = eps
	}

	var errs []error
	var err error
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"REDIS_DB", &c.RedisDB},
		{"IDEMPOTENCY_TTL_SECONDS", &c.IdempTTLSecs},
		{"LOG_MAX_SIZE_MB", &c.LogMaxSizeMB},
		{"LOG_MAX_BACKUPS", &c.LogMaxBackups},
	} {
		if *f.dst, err = getenvInt(f.key, *f.dst); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range []struct {
		key string
		dst *time.Duration
	}{
		{"STORAGE_LIFETIME_THRESHOLD", &c.LifetimeThreshold},
		{"STORAGE_LIFETIME_BUMP", &c.LifetimeBump},
		{"ORACLE_CACHE_TTL", &c.OracleCacheTTL},
		{"ORACLE_TIMEOUT", &c.OracleTimeout},
		{"AUTH_CLOCK_SKEW", &c.AuthClockSkew},
	} {
		if *f.dst, err = getenvDuration(f.key, *f.dst); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ParseEndpoints reads a comma-separated name=url list.
func ParseEndpoints(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, item := range splitList(raw) {
		name, url, ok := strings.Cut(item, "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("ORACLE_ENDPOINTS: malformed entry %q (want name=url)", item)
		}
		out[name] = url
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql|sqlite)", c.DBDriver)
	}
	if c.CustodyAccount == "" {
		return errors.New("missing CUSTODY_ACCOUNT")
	}
	if c.LifetimeBump <= 0 || c.LifetimeThreshold < 0 || c.LifetimeThreshold > c.LifetimeBump {
		return fmt.Errorf("storage lifetime: need 0 <= threshold (%s) <= bump (%s), bump > 0", c.LifetimeThreshold, c.LifetimeBump)
	}
	if c.AuthHMACSecret == "" {
		return errors.New("missing AUTH_HMAC_SECRET")
	}
	switch c.EventSink {
	case "log":
	case "redis":
		if c.EventChannel == "" {
			return errors.New("missing EVENT_CHANNEL for redis sink")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return errors.New("missing KAFKA_BROKERS/KAFKA_TOPIC for kafka sink")
		}
	default:
		return fmt.Errorf("unsupported EVENT_SINK %q (redis|kafka|log)", c.EventSink)
	}
	if c.OracleCacheTTL < 0 || c.OracleTimeout <= 0 {
		return errors.New("oracle: cache TTL must be >= 0 and timeout > 0")
	}
	if staleness := loan.PriceStalenessSeconds * time.Second; c.OracleCacheTTL >= staleness {
		return fmt.Errorf("oracle: cache TTL %s must be below the %s staleness window", c.OracleCacheTTL, staleness)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN is the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}
