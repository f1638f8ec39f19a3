package infrastructure

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/pkg/errors"
)

// AWSOptions carries the connection settings shared by the SNS and SQS
// adapters. Empty endpoints use the regular AWS resolution; LocalStack sets
// them explicitly.
type AWSOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	EndpointSNS     string
	EndpointSQS     string
}

func loadAWSConfig(ctx context.Context, opts AWSOptions) (aws.Config, error) {
	var loaders []func(*config.LoadOptions) error

	if opts.Region != "" {
		loaders = append(loaders, config.WithRegion(opts.Region))
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "failed to load AWS config")
	}

	return cfg, nil
}

// SQSTuning holds the consumer knobs exposed through service config. Zero
// values keep the subscriber defaults.
type SQSTuning struct {
	Workers           int32
	Readers           int32
	VisibilityTimeout int32
}

func (t SQSTuning) Options() []SQSSubscriberOption {
	var opts []SQSSubscriberOption
	if t.Workers > 0 {
		opts = append(opts, WithWorkers(t.Workers))
	}
	if t.Readers > 0 {
		opts = append(opts, WithReaders(t.Readers))
	}
	if t.VisibilityTimeout > 0 {
		opts = append(opts, WithVisibilityTimeout(t.VisibilityTimeout))
	}
	return opts
}
