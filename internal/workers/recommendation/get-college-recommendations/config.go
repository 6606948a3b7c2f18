// internal/workers/recommendation/get-college-recommendations/config.go
package getcollegerecommendations

import (
	"time"

	"college-fit-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// MaxResults caps the list when the job asks for no limit.
	MaxResults int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    60 * time.Second,
		MaxResults: 500,
	}
}

func FromWorkerConfig(wc config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wc.Timeout > 0 {
		cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return cfg
}
