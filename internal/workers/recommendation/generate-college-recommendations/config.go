// internal/workers/recommendation/generate-college-recommendations/config.go
package generatecollegerecommendations

import (
	"time"

	"college-fit-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}

// FromWorkerConfig takes the timeout from workers.<taskType> when set.
func FromWorkerConfig(wc config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wc.Timeout > 0 {
		cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return cfg
}
