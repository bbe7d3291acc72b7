package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port    string `mapstructure:"port"`
		Env     string `mapstructure:"env"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	MinIO struct {
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		UseSSL          bool   `mapstructure:"use_ssl"`
		ResumeBucket    string `mapstructure:"resume_bucket"`
		Location        string `mapstructure:"location"`
	} `mapstructure:"minio"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
	Embedding struct {
		Provider string `mapstructure:"provider"`
		Model    string `mapstructure:"model"`
		BaseURL  string `mapstructure:"base_url"`
		APIKey   string `mapstructure:"api_key"`
	} `mapstructure:"embedding"`
	Extractor struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"extractor"`
	Feed struct {
		PageSize         int           `mapstructure:"page_size"`
		GeneralPageSize  int           `mapstructure:"general_page_size"`
		PreloadThreshold float64       `mapstructure:"preload_threshold"`
		PreloadTTL       time.Duration `mapstructure:"preload_ttl"`
		PreloadTimeout   time.Duration `mapstructure:"preload_timeout"`
		SessionTTL       time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"feed"`
	Enrichment struct {
		StepTimeout  time.Duration `mapstructure:"step_timeout"`
		MaxRetries   int           `mapstructure:"max_retries"`
		LockTTL      time.Duration `mapstructure:"lock_ttl"`
		BackfillSpec string        `mapstructure:"backfill_spec"`
		BackfillSize int           `mapstructure:"backfill_size"`
	} `mapstructure:"enrichment"`
	Backup struct {
		Spec string `mapstructure:"spec"`
	} `mapstructure:"backup"`
	Payment struct {
		MockLatency time.Duration `mapstructure:"mock_latency"`
	} `mapstructure:"payment"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("kafka.group_id", "talent-enrichment-group")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("minio.resume_bucket", "resumes")
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.model", "nomic-embed-text")
	v.SetDefault("extractor.timeout", 30*time.Second)
	v.SetDefault("feed.page_size", 10)
	v.SetDefault("feed.general_page_size", 4)
	v.SetDefault("feed.preload_threshold", 0.7)
	v.SetDefault("feed.preload_ttl", 5*time.Minute)
	v.SetDefault("feed.preload_timeout", 30*time.Second)
	v.SetDefault("feed.session_ttl", 30*time.Minute)
	v.SetDefault("enrichment.step_timeout", 30*time.Second)
	v.SetDefault("enrichment.max_retries", 3)
	v.SetDefault("enrichment.lock_ttl", 2*time.Minute)
	v.SetDefault("enrichment.backfill_spec", "@every 15m")
	v.SetDefault("enrichment.backfill_size", 50)
	v.SetDefault("payment.mock_latency", 300*time.Millisecond)
}

// LoadConfig reads config.yaml from the given paths (default ".") and
// overlays environment variables.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	setDefaults(v)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"app.port":                "APP_PORT",
		"app.env":                 "APP_ENV",
		"app.base_url":            "APP_BASE_URL",
		"db.dsn":                  "DB_DSN",
		"redis.addr":              "REDIS_ADDR",
		"redis.password":          "REDIS_PASSWORD",
		"kafka.brokers":           "KAFKA_BROKERS",
		"auth.jwt_secret":         "JWT_SECRET",
		"auth.token_lifespan":     "TOKEN_LIFESPAN",
		"cloudinary.cloud_name":   "CLOUDINARY_CLOUD_NAME",
		"cloudinary.api_key":      "CLOUDINARY_API_KEY",
		"cloudinary.api_secret":   "CLOUDINARY_API_SECRET",
		"minio.endpoint":          "MINIO_ENDPOINT",
		"minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":           "MINIO_USE_SSL",
		"jaeger.otlp_endpoint":    "JAEGER_OTLP_ENDPOINT",
		"embedding.provider":      "EMBEDDING_PROVIDER",
		"embedding.model":         "EMBEDDING_MODEL",
		"embedding.base_url":      "EMBEDDING_BASE_URL",
		"embedding.api_key":       "EMBEDDING_API_KEY",
		"extractor.url":           "EXTRACTOR_URL",
		"backup.spec":             "BACKUP_SPEC",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	err = v.Unmarshal(&cfg)
	return
}
