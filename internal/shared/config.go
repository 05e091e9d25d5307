package shared

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver string // badger|redis|mysql
	BadgerPath  string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	MySQLDSN    string

	WebhookListURL   string
	WebhookCreateURL string
	WebhookUpdateURL string
	WebhookDeleteURL string
	WebhookTimeout   time.Duration
	WebhookRPS       int

	VapiBase        string
	VapiPrivateKey  string
	VapiPublicKey   string
	VapiAssistantID string
	CallLimit       int

	BestEffortRemoteSync bool
	DuplicatePolicy      string
	UpsertOnMissing      bool
	RefreshInterval      time.Duration
	PublicBaseURL        string
}

// Load reads configuration from the environment and an optional .env file.
func Load() Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("STORE_DRIVER", "badger")
	v.SetDefault("BADGER_PATH", "./data/estates")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/estates?parseTime=true&charset=utf8mb4,utf8&loc=UTC")
	v.SetDefault("WEBHOOK_BASE_URL", "https://n8n-nikki-j977.onrender.com/webhook")
	v.SetDefault("WEBHOOK_TIMEOUT", 10*time.Second)
	v.SetDefault("WEBHOOK_RPS", 5)
	v.SetDefault("VAPI_BASE_URL", "https://api.vapi.ai")
	v.SetDefault("VAPI_PRIVATE_KEY", "YOUR_VAPI_PRIVATE_KEY_HERE")
	v.SetDefault("VAPI_PUBLIC_KEY", "YOUR_VAPI_PUBLIC_KEY")
	v.SetDefault("VAPI_ASSISTANT_ID", "YOUR_VAPI_ASSISTANT_ID")
	v.SetDefault("CALL_LIMIT", 50)
	v.SetDefault("BEST_EFFORT_REMOTE_SYNC", true)
	v.SetDefault("DUPLICATE_POLICY", "append")
	v.SetDefault("UPSERT_ON_MISSING", false)
	v.SetDefault("REFRESH_INTERVAL", time.Duration(0))
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	base := strings.TrimRight(v.GetString("WEBHOOK_BASE_URL"), "/")
	hook := func(k, def string) string {
		if s := v.GetString(k); s != "" {
			return s
		}
		return base + "/" + def
	}

	c := Config{
		AppEnv:      v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		MetricsAddr: v.GetString("METRICS_ADDR"),

		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		BadgerPath:  v.GetString("BADGER_PATH"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RedisPass:   v.GetString("REDIS_PASSWORD"),
		RedisDB:     v.GetInt("REDIS_DB"),
		MySQLDSN:    v.GetString("MYSQL_DSN"),

		WebhookListURL:   hook("WEBHOOK_LIST_URL", "a4fe9fac-7c6d-4ca1-8de0-83c240fa7ec5"),
		WebhookCreateURL: hook("WEBHOOK_CREATE_URL", "411ba450-22c1-46e9-8eca-272d1b101d26"),
		WebhookUpdateURL: hook("WEBHOOK_UPDATE_URL", "5a94a757-311c-4b99-82c6-6f72b5c1f898"),
		WebhookDeleteURL: hook("WEBHOOK_DELETE_URL", "a10b094c-bcb8-493f-b74d-4eed90276286"),
		WebhookTimeout:   v.GetDuration("WEBHOOK_TIMEOUT"),
		WebhookRPS:       v.GetInt("WEBHOOK_RPS"),

		VapiBase:        v.GetString("VAPI_BASE_URL"),
		VapiPrivateKey:  v.GetString("VAPI_PRIVATE_KEY"),
		VapiPublicKey:   v.GetString("VAPI_PUBLIC_KEY"),
		VapiAssistantID: v.GetString("VAPI_ASSISTANT_ID"),
		CallLimit:       v.GetInt("CALL_LIMIT"),

		BestEffortRemoteSync: v.GetBool("BEST_EFFORT_REMOTE_SYNC"),
		DuplicatePolicy:      strings.ToLower(v.GetString("DUPLICATE_POLICY")),
		UpsertOnMissing:      v.GetBool("UPSERT_ON_MISSING"),
		RefreshInterval:      v.GetDuration("REFRESH_INTERVAL"),
		PublicBaseURL:        strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
	}
	if c.WebhookTimeout <= 0 {
		c.WebhookTimeout = 10 * time.Second
	}
	if !c.BestEffortRemoteSync {
		log.Warn().Msg("BEST_EFFORT_REMOTE_SYNC disabled: remote write failures will surface as errors")
	}
	return c
}
