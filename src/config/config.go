package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Token    string
	ClientID string
	GuildID  string

	RequestChannelID string
	MovieChannelID   string
	TVChannelID      string
	PendingChannelID string

	OverseerrURL    string
	OverseerrAPIKey string
	SonarrURL       string
	SonarrAPIKey    string
	RadarrURL       string
	RadarrAPIKey    string

	PublicURL  string
	ListenAddr string
	JWTSecret  string

	DBPath   string
	RedisURL string

	PollInterval         time.Duration
	AvailabilityInterval time.Duration
	MaxSearchResults     int
}

// Load reads the configuration from the environment. Missing required keys
// are fatal; the process is useless without them.
func Load() Config {
	cfg := Config{
		Token:    mustGetenv("DISCORD_TOKEN"),
		ClientID: mustGetenv("DISCORD_CLIENT_ID"),
		GuildID:  os.Getenv("DISCORD_GUILD_ID"),

		RequestChannelID: mustGetenv("REQUEST_CHANNEL_ID"),
		MovieChannelID:   os.Getenv("MOVIE_CHANNEL_ID"),
		TVChannelID:      os.Getenv("TV_CHANNEL_ID"),
		PendingChannelID: os.Getenv("PENDING_CHANNEL_ID"),

		OverseerrURL:    mustGetenv("OVERSEERR_URL"),
		OverseerrAPIKey: mustGetenv("OVERSEERR_API_KEY"),
		SonarrURL:       mustGetenv("SONARR_URL"),
		SonarrAPIKey:    mustGetenv("SONARR_API_KEY"),
		RadarrURL:       mustGetenv("RADARR_URL"),
		RadarrAPIKey:    mustGetenv("RADARR_API_KEY"),

		PublicURL:  getenv("PUBLIC_URL", "http://localhost:8585"),
		ListenAddr: getenv("LISTEN_ADDR", ":8585"),
		JWTSecret:  mustGetenv("JWT_SECRET"),

		DBPath:   getenv("DB_PATH", "discordarr.db"),
		RedisURL: getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		PollInterval:         getenvSeconds("POLL_INTERVAL_SECONDS", 15),
		AvailabilityInterval: getenvSeconds("AVAILABILITY_CHECK_INTERVAL_SECONDS", 120),
		MaxSearchResults:     getenvInt("MAX_SEARCH_RESULTS", 25),
	}

	if cfg.MaxSearchResults > 25 {
		// Discord select menus cap at 25 options
		cfg.MaxSearchResults = 25
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustGetenv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("config: %s is not set", key)
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("config: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getenvSeconds(key string, def int) time.Duration {
	return time.Duration(getenvInt(key, def)) * time.Second
}
