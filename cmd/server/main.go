package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	bolt "go.etcd.io/bbolt"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinestream/config"
	"cinestream/handlers"
	"cinestream/services/catalog"
	"cinestream/services/library"
	"cinestream/services/metadata"
	"cinestream/services/watched"
	"cinestream/utils"
)

func main() {
	settingsPath := flag.String("settings", "./data/settings.json", "path to settings file")
	flag.Parse()

	mgr := config.NewManager(*settingsPath)
	settings, err := mgr.Load()
	if err != nil {
		log.Fatalf("[server] load settings: %v", err)
	}

	if settings.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		})
	}

	if err := os.MkdirAll(settings.DataDir, 0o755); err != nil {
		log.Fatalf("[server] create data dir: %v", err)
	}
	db, err := bolt.Open(filepath.Join(settings.DataDir, "cinestream.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.Fatalf("[server] open database: %v", err)
	}
	defer db.Close()

	cache, err := metadata.NewBoltStore(db)
	if err != nil {
		log.Fatalf("[server] metadata cache: %v", err)
	}
	resolver := metadata.NewResolver(
		metadata.NewOMDBSource(nil, settings.Metadata.OMDBBaseURL, settings.Metadata.OMDBAPIKey, cache),
		metadata.NewTMDBSource(nil, settings.Metadata.TMDBBaseURL, settings.Metadata.TMDBAPIKey, cache),
	)

	registry := catalog.NewRegistry()
	for _, pc := range settings.Providers {
		if !pc.Enabled {
			continue
		}
		switch pc.Type {
		case "yts":
			registry.Register(catalog.NewYTSProvider(nil, pc.URL))
		case "archive":
			registry.Register(catalog.NewArchiveProvider(nil, pc.URL))
		case "dataset":
			p, err := catalog.NewDatasetProvider(pc.Dataset)
			if err != nil {
				log.Printf("[server] skipping dataset provider %s: %v", pc.Name, err)
				continue
			}
			registry.Register(p)
		case "indexsite":
			registry.Register(catalog.NewIndexSiteProvider(nil, pc.Name, pc.URL))
		default:
			log.Printf("[server] unknown provider type %q for %s, skipping", pc.Type, pc.Name)
		}
	}
	if len(registry.All()) == 0 {
		log.Printf("[server] WARNING: no catalog providers enabled")
	}

	watchedStore, err := watched.NewService(db)
	if err != nil {
		log.Fatalf("[server] watched store: %v", err)
	}

	engine := library.NewService(registry, resolver, watchedStore)

	router := utils.NewRouter()
	handlers.NewMoviesHandler(engine, watchedStore).Register(router)

	srv := &http.Server{
		Addr:         settings.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[server] listening on %s", settings.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[server] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
}
