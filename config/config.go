package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Reddit   RedditConfig
	Twitter  TwitterConfig
	Mastodon MastodonConfig
	Oracle   OracleConfig
	Fetch    FetchConfig
	Report   ReportConfig
	Archive  ArchiveConfig
	Mail     MailConfig

	PostgresURL        string
	PostgresSecretPath string

	// Brands and Schedule drive the server command.
	Brands          []string
	Schedule        string
	HealthcheckPort int

	LogLevel  log.Level
	LogFormat LogFormat
}

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	SecretPath   string
	Subreddits   []string
	UserAgent    string
}

func (c RedditConfig) Enabled() bool {
	return c.SecretPath != "" || (c.ClientID != "" && c.ClientSecret != "")
}

type TwitterConfig struct {
	BearerToken string
	SecretPath  string
	Queries     []string
}

func (c TwitterConfig) Enabled() bool {
	return c.SecretPath != "" || c.BearerToken != ""
}

type MastodonConfig struct {
	InstanceURL string
	AccessToken string
	Hashtags    []string
}

func (c MastodonConfig) Enabled() bool {
	return c.InstanceURL != ""
}

type OracleConfig struct {
	Backend         string
	Model           string
	OllamaURL       string
	OpenAIKey       string
	OpenAIBaseURL   string
	AnthropicKey    string
	LabelValidation string
}

type FetchConfig struct {
	Limit  int
	Window time.Duration
}

type ReportConfig struct {
	SuggestionFilter string
}

type ArchiveConfig struct {
	AccountURL string
	Container  string
}

func (c ArchiveConfig) Enabled() bool {
	return c.AccountURL != "" && c.Container != ""
}

type MailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

func (c MailConfig) Enabled() bool {
	return c.Host != "" && len(c.Recipients) > 0
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	DefaultModel     = "mistral:7b"
	DefaultOllamaURL = "http://localhost:11434"
	DefaultSchedule  = "@every 1h"
	DefaultFetchSize = 20
	DefaultWindow    = 24 * time.Hour
)

type EnvfileKey string

const (
	// Postgres connection string to use for database connections
	EnvfileKeyPostgresURL = "POSTGRES_URL"
	// AWS Secrets Manager path where Postgres connection string can be found
	EnvfileKeyPostgresSecretsPath = "POSTGRES_SECRETS_PATH"

	EnvfileKeyRedditClientID     = "REDDIT_CLIENT_ID"
	EnvfileKeyRedditClientSecret = "REDDIT_CLIENT_SECRET"
	// AWS Secrets Manager path holding the Reddit client id and secret
	EnvfileKeyRedditSecretPath = "REDDIT_SECRETS_PATH"
	// Comma separated subreddits searched for each brand
	EnvfileKeyRedditSubreddits = "REDDIT_SUBREDDITS"
	EnvfileKeyRedditUserAgent  = "REDDIT_USER_AGENT"

	// AWS Secrets Manager path where Twitter secrets can be found
	EnvfileKeyTwitterSecretPath  = "TWITTER_SECRETS_PATH"
	EnvfileKeyTwitterBearerToken = "TWITTER_BEARER_TOKEN"
	// Comma separated search operators, each one a feed (e.g. "lang:en -is:retweet")
	EnvfileKeyTwitterQueries = "TWITTER_QUERIES"

	EnvfileKeyMastodonURL      = "MASTODON_URL"
	EnvfileKeyMastodonToken    = "MASTODON_TOKEN"
	EnvfileKeyMastodonHashtags = "MASTODON_HASHTAGS"

	// One of "ollama", "openai", "anthropic"
	EnvfileKeyOracleBackend   = "ORACLE_BACKEND"
	EnvfileKeyOracleModel     = "ORACLE_MODEL"
	EnvfileKeyOllamaURL       = "OLLAMA_URL"
	EnvfileKeyOpenAIKey       = "OPENAI_API_KEY"
	EnvfileKeyOpenAIBaseURL   = "OPENAI_BASE_URL"
	EnvfileKeyAnthropicKey    = "ANTHROPIC_API_KEY"
	EnvfileKeyLabelValidation = "LABEL_VALIDATION"

	// Maximum posts per feed
	EnvfileKeyFetchLimit = "FETCH_LIMIT"
	// How far back a fetch looks, as a Go duration (e.g. "24h")
	EnvfileKeyFetchWindow = "FETCH_WINDOW"

	// Which mentions feed the suggestion summary, as field:value
	EnvfileKeySuggestionFilter = "SUGGESTION_FILTER"

	EnvfileKeyArchiveAccountURL = "AZURE_STORAGE_ACCOUNT_URL"
	EnvfileKeyArchiveContainer  = "AZURE_STORAGE_CONTAINER"

	EnvfileKeySMTPHost         = "SMTP_HOST"
	EnvfileKeySMTPPort         = "SMTP_PORT"
	EnvfileKeySMTPUsername     = "SMTP_USERNAME"
	EnvfileKeySMTPPassword     = "SMTP_PASSWORD"
	EnvfileKeySMTPFrom         = "SMTP_FROM"
	EnvfileKeyReportRecipients = "REPORT_RECIPIENTS"

	// Comma separated brands the server command watches
	EnvfileKeyBrands = "BRANDS"
	// Cron expression for scheduled runs (e.g. "@every 1h", "0 */6 * * *")
	EnvfileKeySchedule        = "SCHEDULE"
	EnvfileKeyHealthcheckPort = "HEALTHCHECK_PORT"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
)

func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("error reading config: %v", err)
		}
		log.Debug("no .env file found, using environment only")
	}

	cfg, err := load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	logLevel, err := log.ParseLevel(getConfigString(EnvfileKeyLogLevel))
	if err != nil {
		// Default to info level but log a warning
		log.Warnf("unable to parse log level: %v", err)
		logLevel = log.InfoLevel
	}

	logFormat, err := parseLogFormat(getConfigString(EnvfileKeyLogFormat))
	if err != nil {
		// Default to text formatter but log a warning
		log.Warnf("unable to parse log format: %v", err)
		logFormat = LogFormatText
	}

	postgresURL := getConfigString(EnvfileKeyPostgresURL)
	postgresSecretsPath := getConfigString(EnvfileKeyPostgresSecretsPath)
	if postgresURL == "" && postgresSecretsPath == "" {
		return Config{}, errors.New("postgres not configured")
	}

	fetchLimit := getConfigInt(EnvfileKeyFetchLimit)
	if fetchLimit <= 0 {
		fetchLimit = DefaultFetchSize
	}

	fetchWindow, err := getConfigDuration(EnvfileKeyFetchWindow, DefaultWindow)
	if err != nil {
		return Config{}, err
	}

	smtpPort := getConfigInt(EnvfileKeySMTPPort)
	if smtpPort == 0 {
		smtpPort = 587
	}

	healthcheckPort := getConfigInt(EnvfileKeyHealthcheckPort)
	if healthcheckPort == 0 {
		healthcheckPort = 8080
	}

	return Config{
		Reddit: RedditConfig{
			ClientID:     getConfigString(EnvfileKeyRedditClientID),
			ClientSecret: getConfigString(EnvfileKeyRedditClientSecret),
			SecretPath:   getConfigString(EnvfileKeyRedditSecretPath),
			Subreddits:   getConfigList(EnvfileKeyRedditSubreddits),
			UserAgent:    getConfigString(EnvfileKeyRedditUserAgent),
		},
		Twitter: TwitterConfig{
			BearerToken: getConfigString(EnvfileKeyTwitterBearerToken),
			SecretPath:  getConfigString(EnvfileKeyTwitterSecretPath),
			Queries:     getConfigList(EnvfileKeyTwitterQueries),
		},
		Mastodon: MastodonConfig{
			InstanceURL: getConfigString(EnvfileKeyMastodonURL),
			AccessToken: getConfigString(EnvfileKeyMastodonToken),
			Hashtags:    getConfigList(EnvfileKeyMastodonHashtags),
		},
		Oracle: OracleConfig{
			Backend:         getConfigString(EnvfileKeyOracleBackend),
			Model:           getConfigStringOr(EnvfileKeyOracleModel, DefaultModel),
			OllamaURL:       getConfigStringOr(EnvfileKeyOllamaURL, DefaultOllamaURL),
			OpenAIKey:       getConfigString(EnvfileKeyOpenAIKey),
			OpenAIBaseURL:   getConfigString(EnvfileKeyOpenAIBaseURL),
			AnthropicKey:    getConfigString(EnvfileKeyAnthropicKey),
			LabelValidation: getConfigString(EnvfileKeyLabelValidation),
		},
		Fetch: FetchConfig{
			Limit:  fetchLimit,
			Window: fetchWindow,
		},
		Report: ReportConfig{
			SuggestionFilter: getConfigString(EnvfileKeySuggestionFilter),
		},
		Archive: ArchiveConfig{
			AccountURL: getConfigString(EnvfileKeyArchiveAccountURL),
			Container:  getConfigString(EnvfileKeyArchiveContainer),
		},
		Mail: MailConfig{
			Host:       getConfigString(EnvfileKeySMTPHost),
			Port:       smtpPort,
			Username:   getConfigString(EnvfileKeySMTPUsername),
			Password:   getConfigString(EnvfileKeySMTPPassword),
			From:       getConfigString(EnvfileKeySMTPFrom),
			Recipients: getConfigList(EnvfileKeyReportRecipients),
		},
		PostgresURL:        postgresURL,
		PostgresSecretPath: postgresSecretsPath,
		Brands:             getConfigList(EnvfileKeyBrands),
		Schedule:           getConfigStringOr(EnvfileKeySchedule, DefaultSchedule),
		HealthcheckPort:    healthcheckPort,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
	}, nil
}

// ApplyLogging sets the process-wide logrus level and formatter.
func (c Config) ApplyLogging() {
	log.SetLevel(c.LogLevel)
	switch c.LogFormat {
	case LogFormatJSON:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{})
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

func getConfigStringOr(key string, fallback string) string {
	if value := getConfigString(key); value != "" {
		return value
	}
	return fallback
}

// Gets a config value as an int from env vars or a .env file
func getConfigInt(key string) int {
	envVarValue := os.Getenv(key)
	if envVarValue == "" {
		return viper.GetInt(key)
	}
	value, err := strconv.Atoi(envVarValue)
	if err != nil {
		return 0
	}
	return value
}

// Splits a comma separated value, dropping blanks
func getConfigList(key string) []string {
	var values []string
	for _, part := range strings.Split(getConfigString(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func getConfigDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getConfigString(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
