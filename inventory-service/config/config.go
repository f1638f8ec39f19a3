package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string    `mapstructure:"service_name"`
	Env         string    `mapstructure:"env"`
	Port        string    `mapstructure:"port"`
	Log         Log       `mapstructure:"log"`
	Messaging   Messaging `mapstructure:"messaging"`
	AWS         AWS       `mapstructure:"aws"`
	Kafka       Kafka     `mapstructure:"kafka"`
	Telemetry   Telemetry `mapstructure:"telemetry"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Messaging selects the transport: "sns" or "kafka"
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

type Telemetry struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// ReadConfig loads <ENVIRONMENT>.json from this directory, then applies
// INVENTORY_ prefixed environment overrides
func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("unable to get current file")
	}

	v := viper.New()
	v.SetConfigName(getConfigName())
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Dir(filename))

	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_name", "inventory-service")
	v.SetDefault("env", "local")
	v.SetDefault("port", "8081")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("messaging.driver", "sns")
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
	v.SetDefault("kafka.publish_topic", "order-replies")
	v.SetDefault("kafka.subscribe_topic", "order-requests")
	v.SetDefault("kafka.group_id", "inventory-service")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")

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

	return &config, nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}
