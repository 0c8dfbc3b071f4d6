package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// 環境変数による上書き対象です。
const (
	EnvDatabasePassword = "DATABASE_PASSWORD"
	EnvDatabaseHost     = "DATABASE_HOST"
	EnvDatabasePort     = "DATABASE_PORT"
	EnvHTTPAddr         = "HTTP_ADDR"
	EnvGRPCAddr         = "GRPC_ADDR"
	EnvLogLevel         = "LOG_LEVEL"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Rules    RulesConfig    `yaml:"rules"`
}

// ServerConfig は HTTP API とヘルスチェック用 gRPC サーバーに関する設定です。
type ServerConfig struct {
	HTTPAddr           string        `yaml:"http_addr"`
	GRPCAddr           string        `yaml:"grpc_addr"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	// Isolation は勤務記録登録トランザクションの分離レベルです (read_committed, serializable)。
	// repeatable_read はロック待ちの前に取得したスナップショットで検証することになるため受け付けません。
	Isolation string `yaml:"isolation"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// RulesConfig は勤務記録の検証ルールの上限値です。0 の項目は標準値を使います。
type RulesConfig struct {
	WeeklyHours         int `yaml:"weekly_hours"`
	DailyHours          int `yaml:"daily_hours"`
	MonthlyHours        int `yaml:"monthly_hours"`
	WeeklyDaysOff       int `yaml:"weekly_days_off"`
	MonthlyDaysOff      int `yaml:"monthly_days_off"`
	WeeklyExtraShifts   int `yaml:"weekly_extra_shifts"`
	WeeklyRegularShifts int `yaml:"weekly_regular_shifts"`
	DailyHeadcount      int `yaml:"daily_headcount"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDatabasePassword); ok && v != "" {
		c.Database.Password = v
	}
	if v, ok := lookup(EnvDatabaseHost); ok && v != "" {
		c.Database.Host = v
	}
	if v, ok := lookup(EnvDatabasePort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvDatabasePort, err)
		}
		c.Database.Port = port
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		c.Server.HTTPAddr = v
	}
	if v, ok := lookup(EnvGRPCAddr); ok && v != "" {
		c.Server.GRPCAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("config: server.http_addr must be set")
	}

	timeout, err := parseDurationAllowEmpty(c.Server.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	c.Server.ShutdownTimeout = timeout

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	switch d.Isolation {
	case "":
		d.Isolation = "read_committed"
	case "read_committed", "serializable":
	default:
		return fmt.Errorf("config: database.isolation %q is not supported", d.Isolation)
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
