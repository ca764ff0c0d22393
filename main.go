package main

import (
	"flag"
	"net/http"
	"os"

	"tinymahjong/internal/config"
	"tinymahjong/internal/handlers"
	"tinymahjong/internal/logging"
	"tinymahjong/internal/storage"
	"tinymahjong/internal/table"
	"tinymahjong/internal/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Errorf("config: %v", err)
		os.Exit(1)
	}

	debug := flag.Bool("debug", cfg.Server.Debug, "enable debug logging")
	listen := flag.String("listen", cfg.Server.Listen, "address to listen on")
	dsn := flag.String("dsn", cfg.Server.DSN, "postgres DSN for the move log (empty disables it)")
	seats := flag.Int("seats", cfg.Server.Seats, "seats per table")
	flag.Parse()
	logging.Debug = *debug
	defer logging.Sync()

	templates.SetCommit(commit)

	var store *storage.Store
	if *dsn != "" {
		db, err := storage.New(*dsn)
		if err != nil {
			logging.Errorf("database: %v", err)
			os.Exit(1)
		}
		store = storage.NewStore(db)
	}

	// Initialize table hub
	hub := table.NewHub(*seats)

	// Initialize HTTP handlers
	h := handlers.NewHandler(hub, store)

	// Register routes
	mux := http.NewServeMux()
	mux.HandleFunc("/new", h.HandleNew)
	mux.HandleFunc("/markup/", h.HandleMarkup)
	mux.HandleFunc("/sse/", h.HandleSSE)
	mux.HandleFunc("/ws/", h.HandleWS)
	mux.HandleFunc("/dropped/", h.HandleDropped)
	mux.HandleFunc("/flag/", h.HandleFlag)
	mux.HandleFunc("/reset/", h.HandleReset)
	mux.HandleFunc("/", h.HandlePage)

	logging.Infof("Tiny Mahjong %s listening on %s", versionString(), *listen)
	if err := http.ListenAndServe(*listen, handlers.LogRequests(mux)); err != nil {
		logging.Errorf("listen: %v", err)
		os.Exit(1)
	}
}
