// Package main is the entry point for the ecosim simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/ecosim-lab/ecosim/internal/config"
	"github.com/ecosim-lab/ecosim/internal/driver"
	"github.com/ecosim-lab/ecosim/internal/engine"
	"github.com/ecosim-lab/ecosim/internal/events"
	"github.com/ecosim-lab/ecosim/internal/infra/storage"
	"github.com/ecosim-lab/ecosim/internal/network"
	"github.com/ecosim-lab/ecosim/internal/platform/logger"
	"github.com/ecosim-lab/ecosim/internal/platform/metrics"
	"github.com/ecosim-lab/ecosim/internal/policy"
)

// SQLitePersisterAdapter translates in-memory simulation events to storage
// records. The run id is attached once the runner exists.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository

	mu    sync.RWMutex
	runID string
}

func (a *SQLitePersisterAdapter) SetRunID(id string) {
	a.mu.Lock()
	a.runID = id
	a.mu.Unlock()
}

func (a *SQLitePersisterAdapter) Append(event events.SimEvent) error {
	a.mu.RLock()
	runID := a.runID
	a.mu.RUnlock()

	var payload string
	if event.Payload != nil {
		if b, err := json.Marshal(event.Payload); err == nil {
			payload = string(b)
		}
	}

	record := storage.EventRecord{
		RunID:     runID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		TargetID:  event.TargetID,
		Step:      event.Step,
		Episode:   event.Episode,
		Payload:   payload,
	}
	err := a.repo.Append(context.Background(), record)
	metrics.Get().RecordEventWrite(err)
	return err
}

func main() {
	configPath := flag.String("config", "", "path to ecosim.yaml (empty = defaults)")
	flag.Parse()

	log.Println("[ECOSIM] Initializing simulation server...")

	appLogger := logger.NewLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.Error("Failed to load config: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Initializing SQLite database '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo}
	historyRepo := storage.NewSQLiteHistoryRepository(db)

	appLogger.Info("Bootstrapping event log...")
	eventLog := events.NewLog(eventPersister)

	appLogger.Info("Bootstrapping simulation environment...")
	env, err := engine.NewEnv(cfg.GridSize, cfg.NumAgents, cfg.NumFood, cfg.NumObstacles, eventLog)
	if err != nil {
		appLogger.Error("Failed to construct environment: " + err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	pol := policy.NewHeuristic(cfg.Seed)
	runner := driver.New(env, pol, hub, historyRepo, appLogger, driver.Options{
		Episodes:    cfg.Episodes,
		Seed:        cfg.Seed,
		StreamEvery: cfg.StreamEvery,
		ReplayDir:   cfg.ReplayDir,
	})
	eventPersister.SetRunID(runner.RunID())

	go func() {
		appLogger.Info("Simulation run " + runner.RunID() + " starting")
		if _, err := runner.Run(ctx); err != nil && ctx.Err() == nil {
			appLogger.Error("Simulation run aborted: " + err.Error())
			return
		}
		appLogger.Info("Simulation run complete")
	}()

	eventsAPI := network.NewEventHistoryHandler(eventLog, appLogger)

	// Setup API routes
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})
	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())
	http.HandleFunc("/api/events", eventsAPI.HandleHistory)

	http.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		limit := storage.HistoryCap
		if q := r.URL.Query().Get("limit"); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 {
				limit = n
			}
		}
		summaries, err := historyRepo.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summaries)
	})

	go func() {
		log.Println("[ECOSIM] HTTP API & WS server listening on " + cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[ECOSIM] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[ECOSIM] Shutting down...")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests from the dashboard dev server
	},
}

// serveWs handles websocket requests from viewers.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
