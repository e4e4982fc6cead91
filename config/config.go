// config/config.go
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every environment setting the server reads at startup
type Config struct {
	Port    string
	Env     string
	BaseURL string

	MongoURI    string
	DBName      string
	StoreDriver string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthProvider string
	JWTSecret    string

	FirebaseProjectID       string
	FirebaseClientEmail     string
	FirebasePrivateKey      string
	FirebaseCredentialsB64  string
	FirebaseCredentialsFile string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	UploadDir          string
	CORSAllowedOrigins []string
}

// Load reads .env (when present) and the process environment
func Load() *Config {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		Env:     getEnv("ENV", "development"),
		BaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		MongoURI:    mongoURI,
		DBName:      getEnv("DB_NAME", "homeservices"),
		StoreDriver: getEnv("STORE_DRIVER", "mongo"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AuthProvider: getEnv("AUTH_PROVIDER", "firebase"),
		JWTSecret:    os.Getenv("JWT_SECRET"),

		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseClientEmail: os.Getenv("FIREBASE_CLIENT_EMAIL"),
		// private keys pasted into env files usually carry escaped newlines
		FirebasePrivateKey:      strings.ReplaceAll(os.Getenv("FIREBASE_PRIVATE_KEY"), `\n`, "\n"),
		FirebaseCredentialsB64:  os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getEnv("MAIL_FROM", os.Getenv("SMTP_USER")),

		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
}

// IsProduction reports whether ENV names a production deployment
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Diagnostics reports which settings are present without exposing any value
func (c *Config) Diagnostics() map[string]interface{} {
	return map[string]interface{}{
		"env":                    c.Env,
		"storeDriver":            c.StoreDriver,
		"authProvider":           c.AuthProvider,
		"hasMongoURI":            c.MongoURI != "",
		"hasRedisAddr":           c.RedisAddr != "",
		"hasJWTSecret":           c.JWTSecret != "",
		"hasFirebaseProjectId":   c.FirebaseProjectID != "",
		"hasFirebaseClientEmail": c.FirebaseClientEmail != "",
		"hasFirebasePrivateKey":  c.FirebasePrivateKey != "",
		"firebasePrivateKeyLen":  len(c.FirebasePrivateKey),
		"hasFirebaseCredentials": c.FirebaseCredentialsB64 != "" || c.FirebaseCredentialsFile != "",
		"hasRazorpayKeyId":       c.RazorpayKeyID != "",
		"hasRazorpayKeySecret":   c.RazorpayKeySecret != "",
		"razorpayKeySecretLen":   len(c.RazorpayKeySecret),
		"hasSmtp":                c.SMTPHost != "" && c.SMTPUser != "",
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
