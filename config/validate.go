package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate reports every setting that would make the server misbehave
// rather than fail: unknown driver names, an S3 disk without a bucket, and
// in production a default or short JWT secret.
func Validate() error {
	_ = Load()
	var errs []error

	oneOf := func(key, fallback string, allowed ...string) {
		v := strings.ToLower(get(key, fallback))
		if !slices.Contains(allowed, v) {
			errs = append(errs, fmt.Errorf("%s=%q, want one of %s", key, v, strings.Join(allowed, ", ")))
		}
	}
	oneOf("DB_DRIVER", defaultDatabaseDriver, "sqlite", "postgres", "mysql", "sqlserver")
	oneOf("LOCK_DRIVER", "memory", "memory", "redis")
	oneOf("QUEUE_DRIVER", "memory", "memory", "redis")
	oneOf("REALTIME_DRIVER", "local", "local", "redis")
	oneOf("STORAGE_DISK", "local", "local", "s3")

	if StorageDefault() == "s3" && StorageS3Bucket() == "" {
		errs = append(errs, errors.New("STORAGE_DISK=s3 needs S3_BUCKET"))
	}
	if IsProduction() {
		switch secret := JWTSecret(); {
		case secret == defaultJWTSecret:
			errs = append(errs, errors.New("JWT_SECRET is the development default"))
		case len(secret) < 32:
			errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes in production"))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
