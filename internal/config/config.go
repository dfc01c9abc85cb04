package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config is the mealplan configuration file.
type Config struct {
	ProfileID  string           `toml:"profile_id" validate:"required"`
	BaseDir    string           `toml:"base_dir" validate:"required"`
	LogDir     string           `toml:"log_dir" validate:"required"`
	LogLevel   string           `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Database   DatabaseConfig   `toml:"database"`
	Generator  GeneratorConfig  `toml:"generator"`
	Planning   PlanningConfig   `toml:"planning"`
	Archive    ArchiveConfig    `toml:"archive"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// DatabaseConfig selects the store. Type decides which other fields apply.
type DatabaseConfig struct {
	Type    string `toml:"type" validate:"oneof=sqlite memory"`
	DataDir string `toml:"data_dir,omitempty" validate:"required_if=Type sqlite"`
}

// GeneratorConfig tunes meal generation. Zero values take the generator's
// defaults.
type GeneratorConfig struct {
	Seed           int64 `toml:"seed"`
	CandidateLimit int   `toml:"candidate_limit" validate:"gte=0"`
	MaxPerGroup    int   `toml:"max_per_group" validate:"gte=0,lte=20"`
	DefaultCount   int   `toml:"default_count" validate:"gte=0,lte=50"`
}

// PlanningConfig holds defaults for plan commands.
type PlanningConfig struct {
	// Overwrite replaces filled slots when plans are regenerated.
	Overwrite bool `toml:"overwrite"`
	// Restrictions are dietary restriction tags applied to generate commands
	// when none are given on the command line.
	Restrictions []string `toml:"restrictions,omitempty"`
}

// ArchiveConfig selects where database snapshots are stored.
// Type decides which other fields apply.
type ArchiveConfig struct {
	Type string `toml:"type" validate:"omitempty,oneof=none memory filesystem s3"` // "none" when empty
	Name string `toml:"name,omitempty"`

	// AutoBackup snapshots the database after every mutating command.
	AutoBackup bool `toml:"auto_backup"`

	// Type == "s3"
	S3Bucket string `toml:"s3_bucket,omitempty" validate:"required_if=Type s3"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty" validate:"required_if=Type s3"`

	// S3Endpoint points at an S3-compatible service instead of AWS.
	S3Endpoint string `toml:"s3_endpoint,omitempty" validate:"omitempty,url"`

	// Static credentials. The default AWS credential chain is used when empty.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty" validate:"required_with=S3SecretAccessKey"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty" validate:"required_with=S3AccessKeyID"`

	// Type == "filesystem"
	FSRoot string `toml:"fs_root,omitempty" validate:"required_if=Type filesystem"`
}

// EncryptionConfig holds the age key pair used to encrypt snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type" validate:"omitempty,oneof=age test none"` // "age" when empty
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig returns a Config with defaults rooted at baseDir.
func NewConfig(profileID, baseDir string) *Config {
	return &Config{
		ProfileID: profileID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		LogLevel:  "info",
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Archive: ArchiveConfig{
			Type:   "filesystem",
			Name:   "local",
			FSRoot: filepath.Join(baseDir, "archive"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "mealplan.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "mealplan.key"),
		},
	}
}

var validate = validator.New()

// Validate checks field values and cross-field requirements.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Manager reads and writes configuration.
type Manager struct{}

// Read decodes a Config from r.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes cfg to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads and validates the Config at path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := (&Manager{}).Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := (&Manager{}).Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
