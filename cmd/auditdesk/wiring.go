package main

import (
	"context"
	"fmt"

	"auditdesk/internal/audit"
	"auditdesk/internal/auth"
	"auditdesk/internal/db"
	"auditdesk/internal/storage"
	"auditdesk/internal/store"
	"auditdesk/internal/store/memory"
	"auditdesk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

type persistence interface {
	audit.Store
	auth.UserLookup
}

// openStore returns the configured store and a func that releases it.
func openStore(ctx context.Context, cfg *types.Config, logger *logrus.Logger) (persistence, func(), error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.New(), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return store.New(pool), pool.Close, nil
}

func openBlobs(ctx context.Context, cfg *types.Config) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocal(cfg.StorageLocalDir)
	case "s3":
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3(s3.NewFromConfig(awsConfig), cfg.StorageBucket), nil
	case "minio":
		return storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.StorageBucket,
		})
	}

	return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
}

func openAuth(ctx context.Context, cfg *types.Config, users auth.UserLookup) (auth.Provider, error) {
	switch cfg.AuthProvider {
	case "local":
		return auth.NewLocal(users, cfg.TokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	case "cognito":
		if cfg.CognitoClientID == "" || cfg.CognitoIssuerURL == "" {
			return nil, fmt.Errorf("set COGNITO_CLIENT_ID and COGNITO_ISSUER_URL")
		}
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		client := cognitoidentityprovider.NewFromConfig(awsConfig)
		return auth.NewCognito(ctx, client, cfg.CognitoClientID, cfg.CognitoIssuerURL, users)
	}

	return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
}
