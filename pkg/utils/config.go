package utils

import (
	"github.com/spf13/viper"
)

// Reset flow variants for the forgot-password feature. "token" issues a
// short-lived reset token after OTP verification; "direct" accepts
// email+otp+new password in a single call.
const (
	ResetFlowToken  = "token"
	ResetFlowDirect = "direct"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OTP      OTPConfig
	Email    EmailConfig
	OAuth    OAuthConfig
	Sweep    SweepConfig
}

type AppConfig struct {
	Name      string
	Port      string
	Debug     bool
	LogPath   string
	ResetFlow string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessExpiryDays   int
	RefreshExpiryDays  int
	ResetExpirySeconds int
}

type OTPConfig struct {
	Length         int
	ExpiryMinutes  int
	LockoutMinutes int
	MaxAttempts    int
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OAuthConfig struct {
	GitHub          OAuthProviderConfig
	Google          OAuthProviderConfig
	StateTTLSeconds int
}

type SweepConfig struct {
	Enabled            bool
	IntervalMinutes    int
	TokenRetentionDays int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("RESET_FLOW", ResetFlowToken)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY_DAYS", 1)
	viper.SetDefault("JWT_REFRESH_EXPIRY_DAYS", 7)
	viper.SetDefault("JWT_RESET_EXPIRY_SECONDS", 300)
	viper.SetDefault("OTP_LENGTH", 6)
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("OTP_LOCKOUT_MINUTES", 10)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("OAUTH_STATE_TTL_SECONDS", 600)
	viper.SetDefault("SWEEP_ENABLED", true)
	viper.SetDefault("SWEEP_INTERVAL_MINUTES", 15)
	viper.SetDefault("TOKEN_RETENTION_DAYS", 30)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:      viper.GetString("APP_NAME"),
			Port:      viper.GetString("PORT"),
			Debug:     viper.GetBool("DEBUG"),
			LogPath:   viper.GetString("LOG_PATH"),
			ResetFlow: viper.GetString("RESET_FLOW"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			AccessExpiryDays:   viper.GetInt("JWT_ACCESS_EXPIRY_DAYS"),
			RefreshExpiryDays:  viper.GetInt("JWT_REFRESH_EXPIRY_DAYS"),
			ResetExpirySeconds: viper.GetInt("JWT_RESET_EXPIRY_SECONDS"),
		},
		OTP: OTPConfig{
			Length:         viper.GetInt("OTP_LENGTH"),
			ExpiryMinutes:  viper.GetInt("OTP_EXPIRY_MINUTES"),
			LockoutMinutes: viper.GetInt("OTP_LOCKOUT_MINUTES"),
			MaxAttempts:    viper.GetInt("OTP_MAX_ATTEMPTS"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		OAuth: OAuthConfig{
			GitHub: OAuthProviderConfig{
				ClientID:     viper.GetString("GITHUB_CLIENT_ID"),
				ClientSecret: viper.GetString("GITHUB_CLIENT_SECRET"),
				RedirectURL:  viper.GetString("GITHUB_REDIRECT_URI"),
			},
			Google: OAuthProviderConfig{
				ClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
				ClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
				RedirectURL:  viper.GetString("GOOGLE_REDIRECT_URI"),
			},
			StateTTLSeconds: viper.GetInt("OAUTH_STATE_TTL_SECONDS"),
		},
		Sweep: SweepConfig{
			Enabled:            viper.GetBool("SWEEP_ENABLED"),
			IntervalMinutes:    viper.GetInt("SWEEP_INTERVAL_MINUTES"),
			TokenRetentionDays: viper.GetInt("TOKEN_RETENTION_DAYS"),
		},
	}

	return config, nil
}
