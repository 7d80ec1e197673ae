package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for the loader service
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Storage   StorageConfig   `yaml:"storage"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
}

// ServiceConfig contains service-level settings
type ServiceConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

// StorageConfig contains object storage (S3-compatible) connection settings.
// The same credentials are handed to DuckDB's httpfs secret and to the
// listing client used by backfill.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// WarehouseConfig contains DuckDB database and schema settings.
// Three schemas mirror the staging / metadata / prod dataset split:
// staging holds the per-family staging tables (and load-time temp tables),
// metadata holds the load manifest, prod holds the final tables.
type WarehouseConfig struct {
	Path           string `yaml:"path"`
	StagingSchema  string `yaml:"staging_schema"`
	MetadataSchema string `yaml:"metadata_schema"`
	ProdSchema     string `yaml:"prod_schema"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ApplyDefaults fills in default values for optional fields
func (c *Config) ApplyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "news-lake-loader"
	}
	if c.Service.Port == 0 {
		c.Service.Port = 8080
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Warehouse.StagingSchema == "" {
		c.Warehouse.StagingSchema = "staging"
	}
	if c.Warehouse.MetadataSchema == "" {
		c.Warehouse.MetadataSchema = "metadata"
	}
	if c.Warehouse.ProdSchema == "" {
		c.Warehouse.ProdSchema = "prod"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("storage.endpoint is required")
	}
	if c.Warehouse.Path == "" {
		return fmt.Errorf("warehouse.path is required")
	}
	if c.Service.Port < 1024 || c.Service.Port > 65535 {
		return fmt.Errorf("service.port must be between 1024 and 65535, got: %d", c.Service.Port)
	}
	return nil
}

// ObjectURI returns the s3:// URI DuckDB uses to read one object
func (c *StorageConfig) ObjectURI(objectPath string) string {
	return fmt.Sprintf("s3://%s/%s", c.Bucket, objectPath)
}
