package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	RateLimit int // requests per minute per IP
}

func Load() Config {
	rateLimit, err := strconv.Atoi(os.Getenv("RATE_LIMIT"))
	if err != nil || rateLimit <= 0 {
		rateLimit = 120
	}

	return Config{
		Port:      os.Getenv("PLAY_SERVICE_PORT"),
		RateLimit: rateLimit,
	}
}
