package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// OTPTTL is the validity window of withdrawal confirmation codes.
	OTPTTL time.Duration

	// LoginRateLimit is a ulule/limiter formatted rate, e.g. "5-M".
	LoginRateLimit string
	// OTPRateLimit throttles withdrawal OTP issuance per client IP.
	OTPRateLimit string

	// Mobile-money gateway (Daraja STK push)
	MpesaConsumerKey    string
	MpesaConsumerSecret string
	MpesaShortcode      string
	MpesaPasskey        string
	MpesaTokenURL       string
	MpesaSTKPushURL     string
	MpesaCallbackURL    string
	GatewayTimeout      time.Duration

	// Outbound notification mail relay; logging fallback when Host is empty.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "traderiser-wallet")
	viper.SetDefault("OTP_TTL", "60s")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("OTP_RATE_LIMIT", "3-M")
	viper.SetDefault("MPESA_CONSUMER_KEY", "")
	viper.SetDefault("MPESA_CONSUMER_SECRET", "")
	viper.SetDefault("MPESA_SHORTCODE", "")
	viper.SetDefault("MPESA_PASSKEY", "")
	viper.SetDefault("MPESA_TOKEN_URL", "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials")
	viper.SetDefault("MPESA_STK_PUSH_URL", "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest")
	viper.SetDefault("MPESA_CALLBACK_URL", "")
	viper.SetDefault("GATEWAY_TIMEOUT", "30s")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "no-reply@traderiser.local")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	otpTTLStr := viper.GetString("OTP_TTL")
	otpTTL, err := time.ParseDuration(otpTTLStr)
	if err != nil {
		otpTTL = 60 * time.Second
		log.Printf("Warning: Invalid value for OTP_TTL ('%s'). Defaulting to %s.\n", otpTTLStr, otpTTL)
	}
	cfg.OTPTTL = otpTTL

	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.OTPRateLimit = viper.GetString("OTP_RATE_LIMIT")

	cfg.MpesaConsumerKey = viper.GetString("MPESA_CONSUMER_KEY")
	cfg.MpesaConsumerSecret = viper.GetString("MPESA_CONSUMER_SECRET")
	cfg.MpesaShortcode = viper.GetString("MPESA_SHORTCODE")
	cfg.MpesaPasskey = viper.GetString("MPESA_PASSKEY")
	cfg.MpesaTokenURL = viper.GetString("MPESA_TOKEN_URL")
	cfg.MpesaSTKPushURL = viper.GetString("MPESA_STK_PUSH_URL")
	cfg.MpesaCallbackURL = viper.GetString("MPESA_CALLBACK_URL")
	if cfg.MpesaConsumerKey == "" {
		log.Println("Warning: MPESA_CONSUMER_KEY not set. Payment initiation will not function.")
	}

	gatewayTimeoutStr := viper.GetString("GATEWAY_TIMEOUT")
	gatewayTimeout, err := time.ParseDuration(gatewayTimeoutStr)
	if err != nil {
		gatewayTimeout = 30 * time.Second
		log.Printf("Warning: Invalid value for GATEWAY_TIMEOUT ('%s'). Defaulting to %s.\n", gatewayTimeoutStr, gatewayTimeout)
	}
	cfg.GatewayTimeout = gatewayTimeout

	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPPort = viper.GetInt("SMTP_PORT")
	cfg.SMTPUsername = viper.GetString("SMTP_USERNAME")
	cfg.SMTPPassword = viper.GetString("SMTP_PASSWORD")
	cfg.SMTPFrom = viper.GetString("SMTP_FROM")

	return cfg, nil
}
