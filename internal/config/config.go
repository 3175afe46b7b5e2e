package config

import "time"

// MediaConfig holds object storage settings for the upload endpoint.
// When Endpoint is empty the upload endpoint is disabled.
type MediaConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	// PublicURL is the base URL under which uploaded objects are reachable.
	// Derived from Endpoint when empty.
	PublicURL string `mapstructure:"public_url" yaml:"public_url"`
}

// Config holds server configuration values. It is built once at startup and
// treated as immutable afterwards.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// StoreDriver selects the message store backend: "sqlite" or "mongo".
	StoreDriver string `mapstructure:"store_driver" yaml:"store_driver"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	MongoURI    string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDB     string `mapstructure:"mongo_db" yaml:"mongo_db"`

	// HistoryLimit bounds the number of records replayed to a new connection.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`

	// ModeratorName and ModeratorSecret identify the single privileged user.
	// The secret may be plaintext or a bcrypt hash. Moderation is disabled
	// while the secret is empty.
	ModeratorName   string `mapstructure:"moderator_name" yaml:"moderator_name"`
	ModeratorSecret string `mapstructure:"moderator_secret" yaml:"moderator_secret"`

	// RejectEmptyPosts rejects posts with no text, media or sticker.
	RejectEmptyPosts bool `mapstructure:"reject_empty_posts" yaml:"reject_empty_posts"`

	// TrustClientModerator takes the client-asserted moderator flag on
	// delete requests at face value. When false, moderator deletes require
	// a server-issued token instead.
	TrustClientModerator bool          `mapstructure:"trust_client_moderator" yaml:"trust_client_moderator"`
	TokenSecret          string        `mapstructure:"token_secret" yaml:"token_secret"`
	TokenTTL             time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	Media MediaConfig `mapstructure:"media" yaml:"media"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                 ":8080",
		ReadHeaderTimeout:    5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		LogLevel:             "info",
		StoreDriver:          "sqlite",
		SQLitePath:           "fuzichat.db",
		MongoURI:             "mongodb://localhost:27017",
		MongoDB:              "fuzichat",
		HistoryLimit:         100,
		ModeratorName:        "fuzi",
		TrustClientModerator: true,
		TokenTTL:             24 * time.Hour,
	}
}
