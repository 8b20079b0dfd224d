package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	BackendURL     string        // REST バックエンドのベースURL
	BackendTimeout time.Duration // 0 なら無制限（注文作成・検証は待ち続ける）

	BreakerMaxFailures uint32        // 連続失敗でブレーカーを開く回数
	BreakerOpenTimeout time.Duration // 開いてから半開になるまで

	RazorpayKeyID string // 決済ウィジェットに渡す公開キー
	Currency      string // 既定 INR
	StoreName     string // ウィジェットに表示する店名

	FreeShippingThreshold decimal.Decimal // これを超えたら送料無料
	FlatShippingFee       decimal.Decimal // 送料

	VerifyMaxRetries uint64        // 決済検証の再試行回数
	VerifyBackoff    time.Duration // 再試行の初期待ち時間

	DatabaseURL string // 空なら検証待ちレシートはメモリ保持

	RedisAddr       string        // 空ならカタログキャッシュ無し
	CatalogCacheTTL time.Duration // カタログキャッシュの有効期限

	SessionIdleTTL time.Duration // 最終アクセスからこれを過ぎたセッションは破棄

	GoEnv        string // dev/prod
	FEURL        string // フロントURL（CORS）
	CookieSecure bool
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:          getenv("PORT", "8080"),
		BackendURL:    strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		RazorpayKeyID: os.Getenv("RAZORPAY_KEY_ID"),
		Currency:      getenv("CURRENCY", "INR"),
		StoreName:     getenv("STORE_NAME", "Elegent Furniture"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		GoEnv:         getenv("GO_ENV", "dev"),
		FEURL:         os.Getenv("FE_URL"),
	}

	var err error
	if cfg.BackendTimeout, err = durationEnv("BACKEND_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.BreakerOpenTimeout, err = durationEnv("BREAKER_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	failures, err := intEnv("BREAKER_MAX_FAILURES", 5)
	if err != nil {
		return Config{}, err
	}
	cfg.BreakerMaxFailures = uint32(failures)

	if cfg.FreeShippingThreshold, err = decimalEnv("FREE_SHIPPING_THRESHOLD", "1000"); err != nil {
		return Config{}, err
	}
	if cfg.FlatShippingFee, err = decimalEnv("FLAT_SHIPPING_FEE", "99"); err != nil {
		return Config{}, err
	}

	retries, err := intEnv("VERIFY_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, err
	}
	cfg.VerifyMaxRetries = uint64(retries)
	if cfg.VerifyBackoff, err = durationEnv("VERIFY_BACKOFF", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.CatalogCacheTTL, err = durationEnv("CATALOG_CACHE_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTTL, err = durationEnv("SESSION_IDLE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = boolEnv("COOKIE_SECURE", cfg.GoEnv == "prod"); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("BACKEND_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.BackendURL); err != nil {
		return Config{}, fmt.Errorf("BACKEND_URL must be a url: %w", err)
	}
	if cfg.RazorpayKeyID == "" {
		return Config{}, fmt.Errorf("RAZORPAY_KEY_ID is required")
	}
	if cfg.VerifyBackoff <= 0 {
		return Config{}, fmt.Errorf("VERIFY_BACKOFF must be > 0")
	}
	if cfg.SessionIdleTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_IDLE_TTL must be > 0")
	}
	if cfg.FlatShippingFee.IsNegative() || cfg.FreeShippingThreshold.IsNegative() {
		return Config{}, fmt.Errorf("shipping settings must be >= 0")
	}

	return cfg, nil
}

// Addr は listen 用に ":" を補う
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	if i < 0 {
		return 0, fmt.Errorf("%s must be >= 0", key)
	}
	return i, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func decimalEnv(key string, def string) (decimal.Decimal, error) {
	v := getenv(key, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be number: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
