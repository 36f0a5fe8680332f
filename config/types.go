package config

import "time"

type AppConfig struct {
	ListenAddr string      `yaml:"listen_addr" env:"CYBERMAP_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	AppEnv     string      `yaml:"app_env" env:"CYBERMAP_APP_ENV"`
	Feed       FeedConfig  `yaml:"feed"`
	NATS       NATSConfig  `yaml:"nats"`
	Map        MapConfig   `yaml:"map"`
	Stats      StatsConfig `yaml:"stats"`
}

type FeedConfig struct {
	BaseURL        string        `yaml:"base_url" env:"CYBERMAP_FEED_BASE_URL" env-default:"http://localhost:3000"`
	PollInterval   time.Duration `yaml:"poll_interval" env:"CYBERMAP_FEED_POLL_INTERVAL" env-default:"30s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CYBERMAP_FEED_REQUEST_TIMEOUT" env-default:"10s"`
	SampleFallback bool          `yaml:"sample_fallback" env:"CYBERMAP_FEED_SAMPLE_FALLBACK" env-default:"true"`
}

type NATSConfig struct {
	Enabled bool   `yaml:"enabled" env:"CYBERMAP_NATS_ENABLED" env-default:"false"`
	URL     string `yaml:"url" env:"CYBERMAP_NATS_URL" env-default:"nats://localhost:4222"`
	Subject string `yaml:"subject" env:"CYBERMAP_NATS_SUBJECT" env-default:"threats.snapshot"`
	Queue   string `yaml:"queue" env:"CYBERMAP_NATS_QUEUE" env-default:"cybermap"`
}

type MapConfig struct {
	StreamBuffer int `yaml:"stream_buffer" env:"CYBERMAP_MAP_STREAM_BUFFER" env-default:"64"`
}

type StatsConfig struct {
	CacheSize int `yaml:"cache_size" env:"CYBERMAP_STATS_CACHE_SIZE" env-default:"128"`
}

const minPollInterval = 5 * time.Second

func (c *AppConfig) EffectivePollInterval() time.Duration {
	interval := 30 * time.Second
	if c != nil && c.Feed.PollInterval > 0 {
		interval = c.Feed.PollInterval
	}
	if interval < minPollInterval {
		return minPollInterval
	}
	return interval
}
