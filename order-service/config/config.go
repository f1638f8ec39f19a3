package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string    `mapstructure:"service_name"`
	Env         string    `mapstructure:"env"`
	Port        string    `mapstructure:"port"`
	Log         Log       `mapstructure:"log"`
	Storage     Storage   `mapstructure:"storage"`
	Database    Database  `mapstructure:"database"`
	Messaging   Messaging `mapstructure:"messaging"`
	AWS         AWS       `mapstructure:"aws"`
	Kafka       Kafka     `mapstructure:"kafka"`
	Redis       Redis     `mapstructure:"redis"`
	Saga        Saga      `mapstructure:"saga"`
	Redrive     Redrive   `mapstructure:"redrive"`
	Telemetry   Telemetry `mapstructure:"telemetry"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Storage selects the order store: "postgres" or "memory"
type Storage struct {
	Driver string `mapstructure:"driver"`
}

type Database struct {
	URL         string `mapstructure:"url"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Database    string `mapstructure:"database"`
	SSLMode     string `mapstructure:"ssl_mode"`
	MaxOpenConn int    `mapstructure:"max_open_conns"`
	InitSchema  bool   `mapstructure:"init_schema"`
}

// Messaging selects the transport: "sns", "kafka" or "memory"
type Messaging struct {
	Driver string `mapstructure:"driver"`
}

type AWS struct {
	AccessKeyID          string `mapstructure:"access_key_id"`
	SecretAccessKey      string `mapstructure:"secret_access_key"`
	Region               string `mapstructure:"region"`
	EndpointSNS          string `mapstructure:"endpoint_sns"`
	EndpointSQS          string `mapstructure:"endpoint_sqs"`
	SNSTopicArn          string `mapstructure:"sns_topic_arn"`
	SQSQueueURL          string `mapstructure:"sqs_queue_url"`
	SQSWorkers           int32  `mapstructure:"sqs_workers"`
	SQSReaders           int32  `mapstructure:"sqs_readers"`
	SQSVisibilityTimeout int32  `mapstructure:"sqs_visibility_timeout"`
}

type Kafka struct {
	Brokers        []string `mapstructure:"brokers"`
	PublishTopic   string   `mapstructure:"publish_topic"`
	SubscribeTopic string   `mapstructure:"subscribe_topic"`
	GroupID        string   `mapstructure:"group_id"`
}

type Redis struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	Channel    string `mapstructure:"channel"`
	EnableOTel bool   `mapstructure:"enable_otel"`
}

type Saga struct {
	AwaitAttempts int           `mapstructure:"await_attempts"`
	AwaitInterval time.Duration `mapstructure:"await_interval"`
	StaleRetries  int           `mapstructure:"stale_retries"`
}

type Redrive struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
	BatchSize  int           `mapstructure:"batch_size"`
}

type Telemetry struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// ReadConfig loads <ENVIRONMENT>.json from this directory, then applies
// ORDER_ prefixed environment overrides. A missing file leaves the defaults.
func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("unable to get current file")
	}

	v := viper.New()
	v.SetConfigName(getConfigName())
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Dir(filename))

	v.SetEnvPrefix("ORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Redrive.Enabled && c.Redrive.Interval <= 0 {
		return errors.Errorf("redrive.interval must be positive, got %s", c.Redrive.Interval)
	}
	return nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "order-service")
	v.SetDefault("env", "local")
	v.SetDefault("port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("storage.driver", "memory")

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "order_saga")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.init_schema", true)

	v.SetDefault("messaging.driver", "memory")

	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint_sns", "")
	v.SetDefault("aws.endpoint_sqs", "")
	v.SetDefault("aws.sns_topic_arn", "")
	v.SetDefault("aws.sqs_queue_url", "")
	v.SetDefault("aws.sqs_workers", 10)
	v.SetDefault("aws.sqs_readers", 0)
	v.SetDefault("aws.sqs_visibility_timeout", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.publish_topic", "order-requests")
	v.SetDefault("kafka.subscribe_topic", "order-replies")
	v.SetDefault("kafka.group_id", "order-service")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.channel", "order-saga:stages")
	v.SetDefault("redis.enable_otel", true)

	v.SetDefault("saga.await_attempts", 10)
	v.SetDefault("saga.await_interval", time.Second)
	v.SetDefault("saga.stale_retries", 3)

	v.SetDefault("redrive.enabled", true)
	v.SetDefault("redrive.interval", 30*time.Second)
	v.SetDefault("redrive.stale_after", 2*time.Minute)
	v.SetDefault("redrive.batch_size", 100)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
}

// GetDatabaseURL returns database.url when set, otherwise builds one from
// the individual fields
func (c *Config) GetDatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
