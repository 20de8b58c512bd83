package config

// This file defines configuration for the object-storage backend used to
// host avatar and cover images.  Any S3-compatible endpoint works (AWS S3,
// MinIO).  When MEDIA_ENABLED is false the upload endpoints respond with
// 503 and the rest of the service runs normally, which keeps local
// development possible without a storage container.

import "os"

// MediaConfig carries S3 connection parameters for the media uploader.
type MediaConfig struct {
	Enabled   bool
	Region    string
	Endpoint  string // base endpoint; empty means the AWS default
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string // base URL prepended to object keys in responses
}

// LoadMediaConfig reads media storage settings from the environment.
// Credentials are optional so that IAM-role based deployments keep working.
func LoadMediaConfig() MediaConfig {
	return MediaConfig{
		Enabled:   envBool("MEDIA_ENABLED", true),
		Region:    envStr("S3_REGION", "us-east-1"),
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Bucket:    envStr("S3_BUCKET", "clipverse-media"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}
}
