package conf

import (
	"fmt"
	"time"

	"github.com/relocity/relocation-backend/internal/pkg/database"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	"github.com/relocity/relocation-backend/internal/pkg/minio"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	MinIO    minio.Config    `mapstructure:"minio"`
	Upload   UploadConfig    `mapstructure:"upload"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Sweeper  SweeperConfig   `mapstructure:"sweeper"`
	Log      logger.Config   `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UploadConfig bounds relocation uploads. MaxFileSize and MaxBlobCount are
// explicit configuration rather than package constants so tests can run
// against small limits; production values are 2 GiB split into at most 32
// composite-object components.
type UploadConfig struct {
	MaxFileSize  int64         `mapstructure:"max_file_size"`
	MaxBlobCount int           `mapstructure:"max_blob_count"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
}

type SweeperConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	GracePeriod time.Duration `mapstructure:"grace_period"`
	Workers     int           `mapstructure:"workers"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("upload.max_file_size", int64(1)<<31)
	viper.SetDefault("upload.max_blob_count", 32)
	viper.SetDefault("upload.timeout", "10m")
	viper.SetDefault("sweeper.interval", "1h")
	viper.SetDefault("sweeper.grace_period", "24h")
	viper.SetDefault("sweeper.workers", 4)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Upload.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the upload limits are usable
func (c *UploadConfig) Validate() error {
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("upload.max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.MaxBlobCount <= 0 {
		return fmt.Errorf("upload.max_blob_count must be positive, got %d", c.MaxBlobCount)
	}
	if c.MaxFileSize < int64(c.MaxBlobCount) {
		return fmt.Errorf("upload.max_file_size %d is smaller than max_blob_count %d", c.MaxFileSize, c.MaxBlobCount)
	}
	return nil
}

// BlobSize returns the fixed chunk size derived from the limits
func (c *UploadConfig) BlobSize() int64 {
	return c.MaxFileSize / int64(c.MaxBlobCount)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
