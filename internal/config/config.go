package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	EmailVerificationEnabled bool

	ObjectStorage  ObjectStorage
	BlobStorage    BlobStorage
	LocalUploadDir string

	RedisAddr     string
	RedisPassword string

	SNSRegion   string
	SNSTopicARN string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	AdminEmail    string
	AdminPassword string
	AcceptanceCap int

	AllowedOrigins []string // CORS allowed origins
	MetricsEnabled bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Prompts             string
	PendingApplications string
	Applicants          string
	Submissions         string
	Reviews             string
	Reviewers           string
}

// ObjectStorage configures the S3-compatible (R2) presigned upload backend.
type ObjectStorage struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

// Configured reports whether every field required for presigning is present.
func (o ObjectStorage) Configured() bool {
	return o.Endpoint != "" && o.AccessKeyID != "" && o.SecretAccessKey != "" && o.Bucket != "" && o.PublicURL != ""
}

// BlobStorage configures the Azure blob client-token backend.
type BlobStorage struct {
	AccountName string
	AccountKey  string
	Container   string
	PublicURL   string // optional CDN in front of the container
}

func (b BlobStorage) Configured() bool {
	return b.AccountName != "" && b.AccountKey != "" && b.Container != ""
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Prompts:             getEnv("DYNAMO_TABLE_PROMPTS", "prompts"),
			PendingApplications: getEnv("DYNAMO_TABLE_PENDING_APPLICATIONS", "pending_applications"),
			Applicants:          getEnv("DYNAMO_TABLE_APPLICANTS", "applicants"),
			Submissions:         getEnv("DYNAMO_TABLE_SUBMISSIONS", "submissions"),
			Reviews:             getEnv("DYNAMO_TABLE_REVIEWS", "reviews"),
			Reviewers:           getEnv("DYNAMO_TABLE_REVIEWERS", "reviewers"),
		},

		EmailVerificationEnabled: getEnvBool("ENABLE_EMAIL_VERIFICATION", false),

		ObjectStorage: ObjectStorage{
			Endpoint:        getEnv("R2_ENDPOINT", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("R2_BUCKET_NAME", ""),
			PublicURL:       strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),
		},
		BlobStorage: BlobStorage{
			AccountName: getEnv("AZURE_STORAGE_ACCOUNT", ""),
			AccountKey:  getEnv("AZURE_STORAGE_KEY", ""),
			Container:   getEnv("AZURE_STORAGE_CONTAINER", ""),
			PublicURL:   strings.TrimRight(getEnv("AZURE_PUBLIC_URL", ""), "/"),
		},
		LocalUploadDir: getEnv("LOCAL_UPLOAD_DIR", "./public/uploads"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 12*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AcceptanceCap: getEnvInt("ACCEPTANCE_CAP", 150),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
