package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type S3Config struct {
	Bucket     string
	Region     string
	Endpoint   string
	MainFolder string
	SubFolder  string
}

type AllocConfig struct {
	MaxRetries int
}

type UCCConfig struct {
	AllowedWorkTypes []string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	S3          S3Config
	Alloc       AllocConfig
	UCC         UCCConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		S3: S3Config{
			Bucket:     v.GetString("S3_BUCKET"),
			Region:     v.GetString("S3_REGION"),
			Endpoint:   v.GetString("S3_ENDPOINT"),
			MainFolder: v.GetString("S3_MAIN_FOLDER"),
			SubFolder:  v.GetString("S3_SUB_FOLDER"),
		},
		Alloc: AllocConfig{
			MaxRetries: v.GetInt("PACKAGE_ALLOC_MAX_RETRIES"),
		},
		UCC: UCCConfig{
			AllowedWorkTypes: parseList(v.GetString("UCC_ALLOWED_WORK_TYPES")),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7093
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "ap-south-1"
	}
	if cfg.S3.MainFolder == "" {
		cfg.S3.MainFolder = "ucc"
	}
	if cfg.S3.SubFolder == "" {
		cfg.S3.SubFolder = "documents"
	}
	if cfg.Alloc.MaxRetries == 0 {
		cfg.Alloc.MaxRetries = 3
	}
	if len(cfg.UCC.AllowedWorkTypes) == 0 {
		cfg.UCC.AllowedWorkTypes = defaultAllowedWorkTypes()
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	return nil
}

// defaultAllowedWorkTypes is the fixed work-type catalogue; the env var
// exists to narrow it per deployment, not to define it.
func defaultAllowedWorkTypes() []string {
	return []string{
		"Regular Civil Works",
		"Strengthening (DBM + BC) / White Topping / PQC",
		"DPR Consultancy",
		"Routine/Regular Maintenance Works",
		"Deposit Works",
		"Misc. (Not Related to Main Carriageway)",
		"Strengthening Under One Time Improvement (DBM + BC)",
		"Blackspot/Road Safety (Long Term)",
		"Overlay Under One Time Improvement (Only BC)",
		"Improvement of Riding Quality (Only BC)",
		"Blackspot/Road Safety (Short Term)",
		"Transfer from Third Party",
		"TOT",
		"InvIT",
		"MoRTH/State Project for Tolling Only",
		"Strengthening Under (OPBMC/PBMC)",
	}
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
