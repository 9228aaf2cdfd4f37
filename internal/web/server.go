package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openyield-labs/svm/internal/ledger"
	"github.com/openyield-labs/svm/internal/logger"
	"github.com/openyield-labs/svm/internal/state"
	"github.com/openyield-labs/svm/internal/types"
	"github.com/openyield-labs/svm/internal/utils"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the ledger's read-only query surface over HTTP. All
// mutations stay programmatic; this server never writes ledger state.
type WebServer struct {
	router *mux.Router
	port   string
	ledger *ledger.Ledger
	start  time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, led *ledger.Ledger) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		ledger: led,
		start:  time.Now(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET")
	api.HandleFunc("/pools/{id}", ws.handleGetPool).Methods("GET")
	api.HandleFunc("/pools/{id}/activity", ws.handleGetPoolActivity).Methods("GET")
	api.HandleFunc("/pools/{id}/snapshots", ws.handleGetPoolSnapshots).Methods("GET")
	api.HandleFunc("/pools/{id}/positions/{account}", ws.handleGetPosition).Methods("GET")
	api.HandleFunc("/pools/{id}/pending/{account}", ws.handleGetPendingReward).Methods("GET")
	api.HandleFunc("/events", ws.handleGetEvents).Methods("GET")
	api.HandleFunc("/stats", ws.handleGetStats).Methods("GET")
	api.HandleFunc("/parameters", ws.handleGetParameters).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	if !dbHealthy {
		overallStatus = "DEGRADED"
	}

	ws.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         overallStatus,
		"uptime_seconds": int64(time.Since(ws.start).Seconds()),
		"database":       dbHealthy,
		"pool_count":     ws.ledger.PoolCount(),
		"paused":         ws.ledger.Paused(),
		"memory_mb":      memStats.Alloc / 1024 / 1024,
	})
}

func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pools":                          ws.ledger.Pools(),
		"total_allocation_weight":        ws.ledger.TotalAllocationWeight(),
		"reward_per_block":               ws.ledger.RewardPerBlock().String(),
		"emergency_withdraw_fee_percent": utils.BpsToPercent(ws.ledger.EmergencyWithdrawFeeBps()),
	})
}

func (ws *WebServer) handleGetPool(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	pool, err := ws.ledger.GetPool(poolID)
	if err != nil {
		ws.writeError(w, http.StatusNotFound, "pool not found")
		return
	}
	ws.writeJSON(w, http.StatusOK, pool)
}

func (ws *WebServer) handleGetPoolActivity(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	activity, err := state.GetPoolActivity(poolID)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load pool activity")
		ws.writeError(w, http.StatusInternalServerError, "failed to load pool activity")
		return
	}
	ws.writeJSON(w, http.StatusOK, activity)
}

func (ws *WebServer) handleGetPoolSnapshots(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	snapshots, err := state.GetRecentPoolSnapshots(poolID, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load pool snapshots")
		ws.writeError(w, http.StatusInternalServerError, "failed to load pool snapshots")
		return
	}
	ws.writeJSON(w, http.StatusOK, snapshots)
}

func (ws *WebServer) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}
	account := types.Account(mux.Vars(r)["account"])

	position, err := ws.ledger.GetPosition(poolID, account)
	if err != nil {
		ws.writeError(w, http.StatusNotFound, "pool not found")
		return
	}
	ws.writeJSON(w, http.StatusOK, position)
}

func (ws *WebServer) handleGetPendingReward(w http.ResponseWriter, r *http.Request) {
	poolID, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}
	account := types.Account(mux.Vars(r)["account"])

	pending, err := ws.ledger.PendingReward(poolID, account)
	if err != nil {
		ws.writeError(w, http.StatusNotFound, "pool not found")
		return
	}
	response := map[string]interface{}{
		"pool_id": poolID,
		"account": account,
		"pending": pending.String(),
	}
	if display, err := utils.SDKIntToFloat64(pending, 18); err == nil {
		response["pending_display"] = display
	}
	ws.writeJSON(w, http.StatusOK, response)
}

func (ws *WebServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	poolID := int64(-1)
	if raw := r.URL.Query().Get("pool"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			ws.writeError(w, http.StatusBadRequest, "invalid pool filter")
			return
		}
		poolID = parsed
	}

	events, err := state.GetRecentEvents(poolID, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load events")
		ws.writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	ws.writeJSON(w, http.StatusOK, events)
}

// handleGetParameters reports the live policy the ledger is running with,
// which may differ from the persisted parameter set after admin updates.
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, http.StatusOK, map[string]interface{}{
		"reward_per_block":               ws.ledger.RewardPerBlock().String(),
		"emergency_withdraw_fee_bps":     ws.ledger.EmergencyWithdrawFeeBps(),
		"emergency_withdraw_fee_percent": utils.BpsToPercent(ws.ledger.EmergencyWithdrawFeeBps()),
		"total_allocation_weight":        ws.ledger.TotalAllocationWeight(),
		"paused":                         ws.ledger.Paused(),
	})
}

// handleGetStats reports system-wide aggregates. Total value staked comes
// from the latest persisted snapshots, so it can lag live state by up to one
// sweep interval.
func (ws *WebServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	tvl, err := state.TotalValueStaked()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load total value staked")
		ws.writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	ws.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool_count":         ws.ledger.PoolCount(),
		"total_value_staked": tvl.String(),
		"reward_per_block":   ws.ledger.RewardPerBlock().String(),
		"paused":             ws.ledger.Paused(),
	})
}

func (ws *WebServer) poolIDFromRequest(w http.ResponseWriter, r *http.Request) (types.PoolID, bool) {
	raw := mux.Vars(r)["id"]
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, "invalid pool id")
		return 0, false
	}
	return types.PoolID(parsed), true
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (ws *WebServer) writeError(w http.ResponseWriter, status int, message string) {
	ws.writeJSON(w, status, map[string]string{"error": message})
}

// corsMiddleware adds CORS headers to all responses
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(started)).
			Msg("HTTP request")
	})
}
