package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	LogLevel   string
	OCR        OCRConfig
	Extract    ExtractConfig
	Store      StoreConfig
	Tax        TaxConfig
}

type OCRConfig struct {
	TesseractDataPath string
	Languages         []string
	Timeout           time.Duration
	// RemoteURL enables the HTTP OCR service; Tesseract is the fallback.
	RemoteURL string
}

type ExtractConfig struct {
	Workers     int
	MaxFileSize int64
	// Uploads per second accepted across all clients, with a burst allowance.
	UploadRate  float64
	UploadBurst int
}

type StoreConfig struct {
	Driver string // memory, sqlite or postgres
	DSN    string
}

type TaxConfig struct {
	RulesDir                 string
	SplitCombinedWithholding bool
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() *Config {
	// .env is optional, plain environment variables work the same
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		OCR: OCRConfig{
			TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
			Languages:         strings.Split(getEnv("OCR_LANGUAGES", "eng+fra"), "+"),
			Timeout:           getDuration("OCR_TIMEOUT", 30*time.Second),
			RemoteURL:         getEnv("REMOTE_OCR_URL", ""),
		},
		Extract: ExtractConfig{
			Workers:     getInt("EXTRACT_WORKERS", 4),
			MaxFileSize: int64(getInt("MAX_FILE_SIZE", 10*1024*1024)), // 10 MB
			UploadRate:  getFloat("UPLOAD_RATE", 2),
			UploadBurst: getInt("UPLOAD_BURST", 10),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "memory")),
			DSN:    getEnv("STORE_DSN", ""),
		},
		Tax: TaxConfig{
			RulesDir:                 getEnv("TAX_RULES_DIR", ""),
			SplitCombinedWithholding: getBool("SPLIT_COMBINED_WITHHOLDING", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getDuration accepts Go durations ("45s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
