package types

import "time"

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"5000"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`
	CORSOrigin      string `envconfig:"CORS_ORIGIN" default:"http://localhost:5173"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Store
	StoreDriver    string `envconfig:"STORE_DRIVER" default:"postgres"` // postgres, memory
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DatabaseSchema string `envconfig:"DATABASE_SCHEMA" default:"auditdesk"`

	// Auth
	AuthProvider    string        `envconfig:"AUTH_PROVIDER" default:"local"` // local, cognito
	TokenSecret     string        `envconfig:"TOKEN_SECRET"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	// Cognito Auth
	CognitoClientID  string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL string `envconfig:"COGNITO_ISSUER_URL"`

	// Blob storage
	StorageBackend  string `envconfig:"STORAGE_BACKEND" default:"local"` // local, s3, minio
	StorageLocalDir string `envconfig:"STORAGE_LOCAL_DIR" default:"uploads"`
	StorageBucket   string `envconfig:"STORAGE_BUCKET" default:"audit-documents"`
	MinioEndpoint   string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey  string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey  string `envconfig:"MINIO_SECRET_KEY"`
	MinioUseSSL     bool   `envconfig:"MINIO_USE_SSL"`
	MaxUploadBytes  int64  `envconfig:"MAX_UPLOAD_BYTES" default:"26214400"`

	// Download links
	// openssl rand -base64 32
	// to generate values
	DownloadLinkTTL time.Duration `envconfig:"DOWNLOAD_LINK_TTL" default:"1h"`
	LinkHashKey     string        `envconfig:"LINK_HASH_KEY"`  // 32 or 64 bytes
	LinkBlockKey    string        `envconfig:"LINK_BLOCK_KEY"` // 16, 24, or 32 bytes
}
