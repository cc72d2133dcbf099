package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mycelia/internal/codec"
	"mycelia/internal/config"
	"mycelia/internal/handler"
	"mycelia/internal/hub"
	"mycelia/internal/network"
	"mycelia/internal/repository/sqlite"
	"mycelia/internal/watcher"
)

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "path to config file (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	seedPath := flag.String("seed", "", "snapshot file to import on startup")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting mycelia server...")

	var cfg *config.Config
	var loadedFrom string
	var err error
	if *configPath != "" {
		cfg, loadedFrom, err = config.LoadFromPath(*configPath)
	} else {
		cfg, loadedFrom, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if loadedFrom != "" {
		log.Printf("Config loaded: %s", loadedFrom)
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *seedPath != "" {
		cfg.Seed.Path = *seedPath
	}

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize the network engine
	engine := network.New(cfg.NetworkConfig())

	// Restore the last persisted snapshot, if any
	if snap, err := repo.LoadSnapshot(context.Background()); err != nil {
		log.Printf("Failed to load snapshot: %v", err)
	} else if snap != nil && len(snap.Nodes) > 0 {
		engine.Import(snap)
		log.Printf("Restored %d nodes, %d hyphae from database", len(snap.Nodes), len(snap.Hyphae))
	}

	// Initialize SSE hub and forward engine events to it
	sseHub := hub.New()
	go sseHub.Run()

	unsubscribe := engine.On(func(event network.Event) {
		sseHub.Broadcast(event)
	})
	defer unsubscribe()

	// Seed file import, optionally re-imported on change
	if cfg.Seed.Path != "" {
		importSeed(engine, cfg.Seed.Path)

		if cfg.Seed.Watch {
			seedWatcher := watcher.New(cfg.Seed.Path, func() {
				importSeed(engine, cfg.Seed.Path)
			})
			go func() {
				if err := seedWatcher.Watch(context.Background()); err != nil && err != context.Canceled {
					log.Printf("Seed watcher stopped: %v", err)
				}
			}()
		}
	}

	// Start the maintenance and stats tickers
	engine.Start()

	// Periodic snapshot persistence
	saveDone := make(chan struct{})
	if cfg.Database.SaveInterval != nil && cfg.Database.SaveInterval.Duration() > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Database.SaveInterval.Duration())
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					saveSnapshot(repo, engine)
				case <-saveDone:
					return
				}
			}
		}()
	}

	// Initialize HTTP handlers
	networkHandler := handler.NewNetworkHandler(engine)

	// Setup routes
	mux := http.NewServeMux()

	// State and stats endpoints
	mux.HandleFunc("GET /api/state", networkHandler.GetState)
	mux.HandleFunc("GET /api/stats", networkHandler.GetStats)

	// Node endpoints
	mux.HandleFunc("GET /api/nodes", networkHandler.ListNodes)
	mux.HandleFunc("POST /api/nodes", networkHandler.CreateNode)
	mux.HandleFunc("POST /api/nodes/find", networkHandler.FindNodes)
	mux.HandleFunc("GET /api/nodes/{id}", networkHandler.GetNode)
	mux.HandleFunc("PUT /api/nodes/{id}", networkHandler.UpdateNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", networkHandler.DeleteNode)
	mux.HandleFunc("GET /api/nodes/{id}/hyphae", networkHandler.GetNodeHyphae)

	// Hypha endpoints
	mux.HandleFunc("POST /api/hyphae", networkHandler.CreateHypha)
	mux.HandleFunc("GET /api/hyphae/{id}", networkHandler.GetHypha)
	mux.HandleFunc("PUT /api/hyphae/{id}", networkHandler.UpdateHypha)
	mux.HandleFunc("DELETE /api/hyphae/{id}", networkHandler.DeleteHypha)

	// Signal endpoints
	mux.HandleFunc("GET /api/signals", networkHandler.ListSignals)
	mux.HandleFunc("POST /api/signals", networkHandler.EmitSignal)
	mux.HandleFunc("GET /api/signals/{id}", networkHandler.GetSignal)
	mux.HandleFunc("DELETE /api/signals/{id}", networkHandler.DeleteSignal)

	// Resonance endpoints
	mux.HandleFunc("GET /api/resonances", networkHandler.ListResonances)
	mux.HandleFunc("POST /api/resonances/detect", networkHandler.DetectResonance)

	// Import/export endpoints
	mux.HandleFunc("POST /api/import", networkHandler.ImportSnapshot)
	mux.HandleFunc("GET /api/export/json", networkHandler.ExportJSON)
	mux.HandleFunc("GET /api/export/yaml", networkHandler.ExportYAML)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful HTTP shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Stop background work and save a final snapshot
	close(saveDone)
	engine.Stop()
	saveSnapshot(repo, engine)

	log.Println("Server stopped")
}

func importSeed(engine *network.Manager, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Failed to open seed file %s: %v", path, err)
		return
	}
	defer f.Close()

	snap, err := codec.ForPath(path).Parse(f)
	if err != nil {
		log.Printf("Failed to parse seed file %s: %v", path, err)
		return
	}

	engine.Import(snap)
	log.Printf("Seed imported: %d nodes, %d hyphae from %s", len(snap.Nodes), len(snap.Hyphae), path)
}

func saveSnapshot(repo *sqlite.Repository, engine *network.Manager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := repo.SaveSnapshot(ctx, engine.Export()); err != nil {
		log.Printf("Failed to save snapshot: %v", err)
	}
}
