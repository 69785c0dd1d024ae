package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
)

type secretsGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Secrets reads JSON documents out of AWS Secrets Manager.
type Secrets struct {
	client secretsGetter
}

func NewSecrets(ctx context.Context) (*Secrets, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Secrets{client: secretsmanager.NewFromConfig(awsConfig)}, nil
}

// Load unmarshals the secret stored at path into out.
func (s *Secrets) Load(ctx context.Context, path string, out any) error {
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(path)})
	if err != nil {
		return fmt.Errorf("get secret %s: %w", path, err)
	}
	if result.SecretString == nil {
		return fmt.Errorf("secret %s has no string value", path)
	}
	if err := json.Unmarshal([]byte(*result.SecretString), out); err != nil {
		return fmt.Errorf("secret %s read error: %w", path, err)
	}
	log.WithField("path", path).Debug("loaded secret")
	return nil
}
