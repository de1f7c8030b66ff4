package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	JWTSecret       string        // JWT署名シークレット
	AccessTokenTTL  time.Duration // アクセストークンの有効期限
	RefreshTokenTTL time.Duration // リフレッシュトークンの有効期限

	GoEnv       string // dev/prod
	APIDomain   string // APIドメイン（cookieやCORSなどで使う）
	FrontendURL string // フロントURL（CORSとメール内リンクで使う）

	DeliveryPrice int64 // 宅配1件あたりの配送料（最小通貨単位）

	// SMTP（未設定ならメールはログ出力のみ）
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// 画像用オブジェクトストレージ
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
	S3UseSSL    bool

	// 翻訳API（未設定ならローカル翻字）
	TranslateURL string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  minutesOrDefault("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTokenTTL: minutesOrDefault("REFRESH_TOKEN_TTL_MIN", 30*24*60),

		GoEnv:       os.Getenv("GO_ENV"),
		APIDomain:   os.Getenv("API_DOMAIN"),
		FrontendURL: os.Getenv("FE_URL"),

		DeliveryPrice: int64(atoiOrDefault("DELIVERY_PRICE", 300)),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     atoiOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
		S3UseSSL:    os.Getenv("S3_USE_SSL") == "true",

		TranslateURL: os.Getenv("TRANSLATE_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.APIDomain == "" {
		return Config{}, fmt.Errorf("API_DOMAIN is required")
	}
	if cfg.FrontendURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func atoiOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func minutesOrDefault(key string, defMinutes int) time.Duration {
	return time.Duration(atoiOrDefault(key, defMinutes)) * time.Minute
}
