package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cryptiklemur/discordarr/src/arr"
	"github.com/cryptiklemur/discordarr/src/auth"
	"github.com/cryptiklemur/discordarr/src/bot"
	"github.com/cryptiklemur/discordarr/src/components/poller"
	"github.com/cryptiklemur/discordarr/src/config"
	"github.com/cryptiklemur/discordarr/src/data"
	"github.com/cryptiklemur/discordarr/src/notify"
	"github.com/cryptiklemur/discordarr/src/overseerr"
)

func main() {
	cfg := config.Load()

	db, err := data.ConnectSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := data.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	store := data.NewStore(db)

	rdb := data.MustRedis(cfg.RedisURL)

	logger := log.Default()
	ov := overseerr.New(cfg.OverseerrURL, cfg.OverseerrAPIKey, logger)
	radarr := arr.NewRadarr(cfg.RadarrURL, cfg.RadarrAPIKey)
	sonarr := arr.NewSonarr(cfg.SonarrURL, cfg.SonarrAPIKey)

	dbot, err := bot.New(cfg, store, rdb, ov, radarr, sonarr)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	channels := notify.Channels{
		Request: cfg.RequestChannelID,
		Movie:   cfg.MovieChannelID,
		TV:      cfg.TVChannelID,
		Pending: cfg.PendingChannelID,
	}
	dispatcher := notify.NewDiscordDispatcher(dbot.Session(), channels, logger)
	dbot.SetDispatcher(dispatcher)

	if err := dbot.Start(); err != nil {
		log.Fatalf("bot start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := poller.New(store, ov, []arr.QueueService{radarr, sonarr}, sonarr, dispatcher, logger)
	if err := engine.Hydrate(ctx); err != nil {
		log.Printf("hydrate: %v", err)
	}

	manager := poller.NewManager(engine, cfg.PollInterval, cfg.AvailabilityInterval)
	manager.Start(ctx)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: auth.New(cfg, rdb, ov),
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("discordarr listening on %s", cfg.ListenAddr)

	// Wait for termination
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	manager.Stop()
	dbot.Stop()

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
