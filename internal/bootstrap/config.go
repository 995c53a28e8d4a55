package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config 存储从 .env 文件和环境变量加载的配置
type Config struct {
	DBDriver   string // mysql | sqlite
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string // Redis key 前缀

	JWTSecret      string
	JWTExpiryHours int

	ServerPort        string
	LogLevel          string
	AppEnv            string // development | production
	CORSAllowedOrigin string

	RateLimitMax    int
	RateLimitWindow time.Duration
	EditRateLimit   int // 每个用户每个文件每秒的实时编辑数，0 表示不限
	CommandTimeout  time.Duration

	PresenceSweepSchedule string // asynq cron 表达式，空字符串关闭巡检
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:              envString("DB_DRIVER", "mysql"),
		DBUser:                os.Getenv("DB_USER"),
		DBPassword:            os.Getenv("DB_PASSWORD"),
		DBHost:                envString("DB_HOST", "127.0.0.1"),
		DBPort:                envString("DB_PORT", "3306"),
		DBName:                os.Getenv("DB_NAME"),
		SQLitePath:            envString("SQLITE_PATH", "workspace.db"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               envInt("REDIS_DB", 0),
		KeyPrefix:             envString("REDIS_KEY_PREFIX", "cw:"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		JWTExpiryHours:        envInt("JWT_EXPIRY_HOURS", 24),
		ServerPort:            envString("SERVER_PORT", "8080"),
		LogLevel:              envString("LOG_LEVEL", "info"),
		AppEnv:                envString("APP_ENV", "development"),
		CORSAllowedOrigin:     envString("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		RateLimitMax:          envInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:       envDuration("RATE_LIMIT_WINDOW", time.Second),
		EditRateLimit:         envInt("EDIT_RATE_LIMIT", 30),
		CommandTimeout:        envDuration("COMMAND_TIMEOUT", 10*time.Second),
		PresenceSweepSchedule: envString("PRESENCE_SWEEP_SCHEDULE", "@every 1m"),
	}
	// 显式设置为空字符串时关闭巡检
	if v, ok := os.LookupEnv("PRESENCE_SWEEP_SCHEDULE"); ok && v == "" {
		cfg.PresenceSweepSchedule = ""
	}

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	}
	switch cfg.DBDriver {
	case "mysql":
		if cfg.DBName == "" {
			return nil, fmt.Errorf("environment variable DB_NAME must be set for mysql")
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want mysql or sqlite)", cfg.DBDriver)
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %d", key, v, def)
		return def
	}
	return n
}

// envDuration 接受 "500ms"、"2s" 这样的写法，纯数字按秒处理。
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %s", key, v, def)
		return def
	}
	return d
}
