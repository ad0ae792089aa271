// Package awsclient builds the AWS SDK clients once at startup so they can be
// injected into the storage, OCR and Bedrock adapters.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"

	"github.com/joseph-ayodele/lease-intake/internal/common"
)

// Clients holds the service clients sharing one credentials provider.
type Clients struct {
	Config   aws.Config
	S3       *s3.Client
	Textract *textract.Client
	Bedrock  *bedrockruntime.Client
}

// LoadConfig resolves region and credentials. Static keys win when configured,
// otherwise the SDK default chain is used and refreshed lazily by the SDK.
func LoadConfig(ctx context.Context, cfg common.AWSConfig) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return awsCfg, nil
}

// New builds every client from a single resolved configuration.
func New(ctx context.Context, cfg common.AWSConfig) (*Clients, error) {
	awsCfg, err := LoadConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	usePathStyle := cfg.Endpoint != ""
	return &Clients{
		Config: awsCfg,
		S3: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = usePathStyle
		}),
		Textract: textract.NewFromConfig(awsCfg),
		Bedrock:  bedrockruntime.NewFromConfig(awsCfg),
	}, nil
}
