package config

import "time"

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Source       SourceConfig       `mapstructure:"source"`
	ControlPlane ControlPlaneConfig `mapstructure:"control_plane"`
	Scaler       ScalerConfig       `mapstructure:"scaler"`
	State        StateConfig        `mapstructure:"state"`
	Report       ReportConfig       `mapstructure:"report"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Simulator    SimulatorConfig    `mapstructure:"simulator"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"log_level"`
}

type SourceConfig struct {
	Type           string               `mapstructure:"type"`
	Endpoint       string               `mapstructure:"endpoint"`
	Token          string               `mapstructure:"token"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	RetryAttempts  int                  `mapstructure:"retry_attempts"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ControlPlaneConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ScalerConfig is the full tunable surface of the decision policy. These are
// the only inputs that change controller behavior.
type ScalerConfig struct {
	LookbackWindow     time.Duration `mapstructure:"lookback_window"`
	LatencyHigh        time.Duration `mapstructure:"latency_high"`
	LatencyLow         time.Duration `mapstructure:"latency_low"`
	QueueDepthHigh     int           `mapstructure:"queue_depth_high"`
	SizeLadder         []string      `mapstructure:"size_ladder"`
	MinClusters        int           `mapstructure:"min_clusters"`
	MaxClusters        int           `mapstructure:"max_clusters"`
	Cooldown           time.Duration `mapstructure:"cooldown"`
	MaxScaleUpsPerHour int           `mapstructure:"max_scale_ups_per_hour"`
	StateRetention     time.Duration `mapstructure:"state_retention"`
	WarehouseTimeout   time.Duration `mapstructure:"warehouse_timeout"`
}

type StateConfig struct {
	Path string `mapstructure:"path"`
}

type ReportConfig struct {
	PostgresEnabled bool `mapstructure:"postgres_enabled"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxConnections  int           `mapstructure:"max_connections"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type SimulatorConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}
