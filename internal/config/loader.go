package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/shopflow/pipeline/internal/cloud"
	"github.com/shopflow/pipeline/internal/db"
)

// LoaderConfig holds the batch loader settings.
type LoaderConfig struct {
	DataDir   string
	ChunkSize int
	// LoadDate overrides the logical partition date (YYYY-MM-DD).
	// Empty means current UTC date.
	LoadDate string
}

// Config aggregates every pipeline stage's configuration.
type Config struct {
	Database db.Config
	Loader   LoaderConfig
	Storage  cloud.Config
}

// DefaultConfig returns the defaults applied before config.yaml and
// environment overrides.
func DefaultConfig() Config {
	return Config{
		Database: db.DefaultConfig(),
		Loader: LoaderConfig{
			DataDir:   "data/raw",
			ChunkSize: 1000,
		},
		Storage: cloud.Config{
			Prefix: "raw",
		},
	}
}

// Load reads configuration from config.yaml in configPath, with
// environment overrides (SHOPFLOW_DATABASE_HOST, SHOPFLOW_LOADER_DATA_DIR,
// SHOPFLOW_STORAGE_BUCKET, ...).
func Load(configPath string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("SHOPFLOW")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("loader.data_dir")
	v.BindEnv("loader.chunk_size")
	v.BindEnv("loader.load_date")
	v.BindEnv("storage.endpoint_url")
	v.BindEnv("storage.access_key_id")
	v.BindEnv("storage.secret_access_key")
	v.BindEnv("storage.region")
	v.BindEnv("storage.bucket")
	v.BindEnv("storage.prefix")
	v.BindEnv("storage.use_ssl")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Use defaults + env.
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("loader.data_dir") {
		cfg.Loader.DataDir = v.GetString("loader.data_dir")
	}
	if v.IsSet("loader.chunk_size") {
		cfg.Loader.ChunkSize = v.GetInt("loader.chunk_size")
	}
	if v.IsSet("loader.load_date") {
		cfg.Loader.LoadDate = v.GetString("loader.load_date")
	}

	if v.IsSet("storage.endpoint_url") {
		cfg.Storage.EndpointURL = v.GetString("storage.endpoint_url")
	}
	if v.IsSet("storage.access_key_id") {
		cfg.Storage.AccessKeyID = v.GetString("storage.access_key_id")
	}
	if v.IsSet("storage.secret_access_key") {
		cfg.Storage.SecretAccessKey = v.GetString("storage.secret_access_key")
	}
	if v.IsSet("storage.region") {
		cfg.Storage.Region = v.GetString("storage.region")
	}
	if v.IsSet("storage.bucket") {
		cfg.Storage.Bucket = v.GetString("storage.bucket")
	}
	if v.IsSet("storage.prefix") {
		cfg.Storage.Prefix = v.GetString("storage.prefix")
	}
	if v.IsSet("storage.use_ssl") {
		cfg.Storage.UseSSL = v.GetBool("storage.use_ssl")
	}

	return cfg, nil
}

// ParseLoadDate parses the optional load-date override.
func ParseLoadDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid load date %q: expected YYYY-MM-DD", value)
	}
	return date, nil
}
