package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port         string
	DBPath       string
	MediaRoot    string
	OSRMBaseURL  string
	JWTSecret    string
	MatchTimeout time.Duration // 每条轨迹匹配请求的超时
	JobTTL       time.Duration // 未消费任务的保留时间
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/trajgen.db"
	}

	mediaRoot := os.Getenv("MEDIA_ROOT")
	if mediaRoot == "" {
		mediaRoot = "./media"
	}

	osrmURL := os.Getenv("OSRM_URL")
	if osrmURL == "" {
		osrmURL = "http://router.project-osrm.org"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	return &Config{
		Port:         port,
		DBPath:       dbPath,
		MediaRoot:    mediaRoot,
		OSRMBaseURL:  osrmURL,
		JWTSecret:    jwtSecret,
		MatchTimeout: time.Duration(intEnv("MATCH_TIMEOUT_SECONDS", 10)) * time.Second,
		JobTTL:       time.Duration(intEnv("JOB_TTL_MINUTES", 30)) * time.Minute,
	}
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
