package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/autoline-panel/shop-api/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Shop      ShopConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	AutoMigrate     bool
}

// AuthConfig holds admin authentication settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	// TokenTTL is the lifetime of an admin token in minutes
	TokenTTL int
	// ApiKey allows system callers to skip the login flow
	ApiKey string
	// AdminEmail and AdminPassword seed the first admin account on startup
	AdminEmail       string
	AdminPassword    string
	AdminDisplayName string
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	PublicBaseURL         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
	MaxImagesPerQuote     int
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// PublicSubmissionsPerMinute caps quote submissions and image uploads per IP
	PublicSubmissionsPerMinute int
	// LoginAttemptsPerMinute caps admin login attempts per IP
	LoginAttemptsPerMinute     int
	WhitelistIPs               []string
	WhitelistPaths             []string
}

// ShopConfig is the business identity printed on every document
type ShopConfig struct {
	Name          string
	Tagline       string
	Phone         string
	Email         string
	Website       string
	Address       string
	BankName      string
	AccountName   string
	BranchCode    string
	AccountNumber string
	// QuoteValidityDays is quoted in the terms block
	QuoteValidityDays int
	// WarrantyMonths is quoted in the terms block
	WarrantyMonths int
}

// JobsConfig holds background job settings
type JobsConfig struct {
	UploadJanitorEnabled bool
	UploadJanitorCron    string
	// UploadRetentionHours is how long an upload may stay unattached to a quote
	UploadRetentionHours int
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// TokenTTLDuration returns the admin token lifetime as duration
func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Minute
}

// MaxUploadBytes returns the per-file upload limit in bytes
func (s *StorageConfig) MaxUploadBytes() int64 {
	return s.MaxUploadSizeMB << 20
}

// UploadRetentionDuration returns how long unclaimed uploads are kept
func (j *JobsConfig) UploadRetentionDuration() time.Duration {
	return time.Duration(j.UploadRetentionHours) * time.Hour
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Auth.ApiKey == "" {
		cfg.Auth.ApiKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.AdminEmail == "" {
		cfg.Auth.AdminEmail = v.GetString("ADMIN_EMAIL")
	}
	if cfg.Auth.AdminPassword == "" {
		cfg.Auth.AdminPassword = v.GetString("ADMIN_PASSWORD")
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// Key Vault is used only when USE_AZURE_KEY_VAULT=true and the environment is
// staging or production; everything else reads environment variables.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	if err := applySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// SecretSource is the subset of the secrets provider used while resolving config
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// applySecrets overlays vault values onto cfg. The JWT signing secret is mandatory.
func applySecrets(ctx context.Context, cfg *Config, provider SecretSource) error {
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	jwtSecret, err := provider.GetSecretOrEnv(ctx, secrets.NameJWTSecret, "JWT_SECRET")
	if err != nil || jwtSecret == "" {
		return fmt.Errorf("failed to resolve JWT signing secret: %w", err)
	}
	cfg.Auth.JWTSecret = jwtSecret

	optional := []struct {
		secret, env string
		target      *string
	}{
		{secrets.NameDatabaseHost, "DATABASE_HOST", &cfg.Database.Host},
		{secrets.NameDatabaseUser, "DATABASE_USER", &cfg.Database.User},
		{secrets.NameDatabasePassword, "DATABASE_PASSWORD", &cfg.Database.Password},
		{secrets.NameAdminAPIKey, "ADMIN_API_KEY", &cfg.Auth.ApiKey},
		{secrets.NameAdminPassword, "ADMIN_PASSWORD", &cfg.Auth.AdminPassword},
		{secrets.NameStorageConnectionString, "STORAGE_CLOUDCONNECTIONSTRING", &cfg.Storage.CloudConnectionString},
	}
	for _, o := range optional {
		if v, err := provider.GetSecretOrEnv(ctx, o.secret, o.env); err == nil && v != "" {
			*o.target = v
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "AutoLine Panel Shop API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "autoline")
	v.SetDefault("database.user", "autoline_user")
	v.SetDefault("database.password", "autoline_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "./autoline.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	v.SetDefault("auth.issuer", "autoline-panel-shop")
	v.SetDefault("auth.tokenTTL", 480) // one working day
	v.SetDefault("auth.adminDisplayName", "Shop Admin")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.publicBaseURL", "http://localhost:8080/api/uploads")
	v.SetDefault("storage.cloudContainer", "quote-images")
	v.SetDefault("storage.maxUploadSizeMB", 5)
	v.SetDefault("storage.maxImagesPerQuote", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Content-Disposition"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 240)
	v.SetDefault("rateLimit.publicSubmissionsPerMinute", 5)
	v.SetDefault("rateLimit.loginAttemptsPerMinute", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	v.SetDefault("shop.name", "AutoLine Panel Shop")
	v.SetDefault("shop.tagline", "Professional Auto Body Repair & Panel Beating")
	v.SetDefault("shop.phone", "+27 60 475 5243")
	v.SetDefault("shop.email", "autolinepanelshop@gmail.com")
	v.SetDefault("shop.website", "www.autolinepanelshop.co.za")
	v.SetDefault("shop.address", "121 Stormvoël Rd, Lindopark, Pretoria")
	v.SetDefault("shop.bankName", "FNB")
	v.SetDefault("shop.accountName", "AutoLine Panel Shop")
	v.SetDefault("shop.branchCode", "250655")
	v.SetDefault("shop.accountNumber", "63167334829")
	v.SetDefault("shop.quoteValidityDays", 7)
	v.SetDefault("shop.warrantyMonths", 6)

	v.SetDefault("jobs.uploadJanitorEnabled", true)
	v.SetDefault("jobs.uploadJanitorCron", "0 0 3 * * *")
	v.SetDefault("jobs.uploadRetentionHours", 24)
}
