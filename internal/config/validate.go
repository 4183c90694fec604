package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field constraints and the settings each catalog source and
// storage backend needs.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return err
	}

	validators := []func() error{
		c.validateCatalog,
		c.validateStorage,
		c.validateRecommend,
	}
	for _, fn := range validators {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case "postgres":
		if c.Postgres.URL == "" {
			return errors.New("postgres.url is required for catalog source postgres")
		}
	case "dynamodb":
		if c.DynamoDB.Table == "" {
			return errors.New("dynamodb.table is required for catalog source dynamodb")
		}
	case "snapshot":
		if c.Catalog.Snapshot == "" {
			return errors.New("catalog.snapshot is required for catalog source snapshot")
		}
		if c.Storage.Backend == "memory" {
			return errors.New("storage.backend memory cannot hold a snapshot to load")
		}
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for storage backend local")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for storage backend s3")
		}
	case "minio":
		if c.Storage.Bucket == "" || c.Storage.Endpoint == "" {
			return errors.New("storage.bucket and storage.endpoint are required for storage backend minio")
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxLimit > 0 && r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("recommend.default_limit (%d) exceeds recommend.max_limit (%d)", r.DefaultLimit, r.MaxLimit)
	}
	return nil
}
