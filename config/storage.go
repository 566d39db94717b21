package config

import "strings"

// StorageConfig selects and configures the object store backend.
type StorageConfig struct {
	Driver        string // minio or s3
	Endpoint      string // minio host:port
	S3Endpoint    string // optional custom endpoint for s3-compatible services
	AccessKey     string // empty for s3 means the default AWS credential chain
	SecretKey     string
	UseSSL        bool
	Region        string
	Bucket        string
	PublicBaseURL string // locator prefix; defaults to the endpoint URL
}

func loadStorageConfig() StorageConfig {
	host := getEnv("MINIO_HOST", "localhost")
	port := getEnv("MINIO_PORT", "9000")
	endpoint := getEnv("STORAGE_ENDPOINT", "")
	if endpoint == "" {
		endpoint = host + ":" + port
	}
	driver := strings.ToLower(getEnv("STORAGE_DRIVER", "minio"))
	accessKey := getEnv("MINIO_USERNAME", "minioadmin")
	secretKey := getEnv("MINIO_PASSWORD", "minioadmin")
	if driver == "s3" {
		accessKey = getEnv("S3_ACCESS_KEY", "")
		secretKey = getEnv("S3_SECRET_KEY", "")
	}
	return StorageConfig{
		Driver:        driver,
		Endpoint:      endpoint,
		AccessKey:     accessKey,
		SecretKey:     secretKey,
		UseSSL:        getEnvBool("MINIO_USE_SSL", false),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		Region:        getEnv("S3_REGION", "us-east-1"),
		Bucket:        getEnv("BUCKET_NAME", "assets"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
	}
}
