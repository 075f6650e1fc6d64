package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Robot     RobotConfig     `yaml:"robot"`
	Web       WebConfig       `yaml:"web"`
	Messaging MessagingConfig `yaml:"messaging"`
	Mission   MissionConfig   `yaml:"mission"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RobotConfig points at the robot's remote command API.
type RobotConfig struct {
	BaseURL       string        `yaml:"base_url"`
	RobotID       string        `yaml:"robot_id"`
	Timeout       time.Duration `yaml:"timeout"`
	StatePollRate time.Duration `yaml:"state_poll_rate"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

type MessagingConfig struct {
	Kafka               KafkaConfig   `yaml:"kafka"`
	MissionsTopic       string        `yaml:"missions_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
	StationID           string        `yaml:"station_id"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

// MissionConfig tunes the execution engine. Zero values fall back to
// the step policy defaults in the mission package.
type MissionConfig struct {
	PointCacheTTL  time.Duration `yaml:"point_cache_ttl"`
	MoveTimeout    time.Duration `yaml:"move_timeout"`
	DockTimeout    time.Duration `yaml:"dock_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	JackSettle     time.Duration `yaml:"jack_settle"`
	GateSettle     time.Duration `yaml:"gate_settle"`
	AlignAttempts  int           `yaml:"align_attempts"`
	MoveRetries    int           `yaml:"move_retries"`
	SafetyRechecks int           `yaml:"safety_rechecks"`
}

func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "missioncore.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "missioncore",
				User:     "missioncore",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
		},
		Robot: RobotConfig{
			BaseURL:       "http://192.168.1.50:8090",
			RobotID:       "AMR-01",
			Timeout:       10 * time.Second,
			StatePollRate: 2 * time.Second,
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8084,
			SessionSecret: "change-me-in-production",
		},
		Messaging: MessagingConfig{
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
			},
			MissionsTopic:       "missioncore.missions",
			OutboxDrainInterval: 5 * time.Second,
			StationID:           "missioncore",
		},
		Mission: MissionConfig{
			PointCacheTTL:  60 * time.Second,
			MoveTimeout:    150 * time.Second,
			DockTimeout:    300 * time.Second,
			PollInterval:   time.Second,
			JackSettle:     12 * time.Second,
			GateSettle:     3 * time.Second,
			AlignAttempts:  3,
			MoveRetries:    2,
			SafetyRechecks: 3,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Lock()   { c.mu.Lock() }
func (c *Config) Unlock() { c.mu.Unlock() }
