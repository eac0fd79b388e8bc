package configuration

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"social-hub/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	Vault       Vault       `json:"vault"`
	OAuth       OAuth       `json:"oauth"`
	Sync        Sync        `json:"sync"`
	Undo        Undo        `json:"undo"`
}

type App struct {
	Port        int    `json:"port"`
	BaseURL     string `json:"baseUrl"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
	// Subscription, when set, relays sync events published by other replicas
	// into this instance's SSE hub.
	Subscription string `json:"subscription"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
	// Consume enables the queue relay loop feeding the SSE hub.
	Consume bool `json:"consume"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type Logger struct {
	Format string `json:"format"`
}

// Vault holds the credential vault key: raw 32 bytes or base64 of 32 bytes.
// Validation happens in vault.New.
type Vault struct {
	Key string `json:"key"`
}

// OAuth holds flow-level settings. Per-workspace client credentials live in
// the credential store, not here.
type OAuth struct {
	StateTTLMinutes int `json:"stateTTLMinutes"`
}

// Sync controls the orchestrator.
type Sync struct {
	Parallelism     int      `json:"parallelism"`
	DeadlineSeconds int      `json:"deadlineSeconds"`
	IntervalSeconds int      `json:"intervalSeconds"`
	Workspaces      []string `json:"workspaces"`
}

// Undo controls the reversible-action ledger.
type Undo struct {
	TTLMs int `json:"ttlMs"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initDefaults(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}

	// Optional MSSQL config via environment variables (Azure SQL in production)
	if v := os.Getenv("MSSQL_DB_NAME"); v != "" && C.Database.Mssql.Name == "" {
		C.Database.Mssql.Name = v
	}
	if v := os.Getenv("MSSQL_HOST"); v != "" && C.Database.Mssql.Host == "" {
		C.Database.Mssql.Host = v
	}
	if v := os.Getenv("MSSQL_USER"); v != "" && C.Database.Mssql.User == "" {
		C.Database.Mssql.User = v
	}
	if v := os.Getenv("MSSQL_PASSWORD"); v != "" && C.Database.Mssql.Password == "" {
		C.Database.Mssql.Password = v
	}
	if C.Database.Mssql.Port == "" {
		C.Database.Mssql.Port = os.Getenv("MSSQL_PORT")
	}
	if C.Database.Mssql.Port == "" {
		C.Database.Mssql.Port = "1433"
	}
}

func initApp(C *Config) {
	// SECRET_KEY from environment overrides the config file when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		C.App.BaseURL = v
	}
	if C.App.BaseURL == "" {
		scheme := "http"
		if C.App.TLSEnabled {
			scheme = "https"
		}
		C.App.BaseURL = fmt.Sprintf("%s://localhost:%d", scheme, C.App.Port)
	}
	C.App.BaseURL = strings.TrimRight(C.App.BaseURL, "/")
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initDefaults(C *Config) {
	if v := os.Getenv("VAULT_KEY"); v != "" {
		C.Vault.Key = v
	}
	if C.OAuth.StateTTLMinutes <= 0 {
		C.OAuth.StateTTLMinutes = 10
	}
	if C.Sync.Parallelism <= 0 {
		C.Sync.Parallelism = 4
	}
	if C.Sync.DeadlineSeconds <= 0 {
		C.Sync.DeadlineSeconds = 120
	}
	if C.Sync.IntervalSeconds <= 0 {
		C.Sync.IntervalSeconds = 900
	}
	if C.Undo.TTLMs <= 0 {
		C.Undo.TTLMs = 5000
	}
	if C.Pubsub.Topic == "" {
		C.Pubsub.Topic = "sync-events"
	}
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = "sync-events"
	}
}

// VaultKey decodes the configured vault key. A raw 32-byte string is used as
// is; anything else is attempted as base64.
func VaultKey() []byte {
	k := C.Vault.Key
	if k == "" {
		return nil
	}
	if len(k) == 32 {
		return []byte(k)
	}
	if raw, err := base64.StdEncoding.DecodeString(k); err == nil {
		return raw
	}
	return []byte(k)
}
