package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/theaxiomverse/hydra/internal/engine"
	"github.com/theaxiomverse/hydra/internal/fixedmath"
	"github.com/theaxiomverse/hydra/internal/logger"
	"github.com/theaxiomverse/hydra/internal/pool"
	"github.com/theaxiomverse/hydra/internal/state"
	"github.com/theaxiomverse/hydra/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

const defaultDepthSteps = 10

// WebServer handles HTTP requests for pool and quoting data
type WebServer struct {
	router     *mux.Router
	port       string
	ledger     *pool.Ledger
	engine     *engine.Engine
	configName string
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, ledger *pool.Ledger, eng *engine.Engine, configName string) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:     mux.NewRouter(),
		port:       port,
		ledger:     ledger,
		engine:     eng,
		configName: configName,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes. Pairs appear in paths as their
// two legs ("/pools/D4L/USDC/..."), joined back with a slash internally.
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET")
	api.HandleFunc("/pools/{base}/{quote}", ws.handleGetPool).Methods("GET")
	api.HandleFunc("/pools/{base}/{quote}/quote", ws.handleQuoteSwap).Methods("GET")
	api.HandleFunc("/pools/{base}/{quote}/depth", ws.handleGetDepth).Methods("GET")
	api.HandleFunc("/pools/{base}/{quote}/quotes", ws.handleGetRecentQuotes).Methods("GET")
	api.HandleFunc("/pools/{base}/{quote}/summary", ws.handleGetPairSummary).Methods("GET")
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

// formatFixed renders a 10^18 fixed-point integer as a decimal string for
// display. Engine math never touches this representation.
func formatFixed(v sdkmath.Int) string {
	if v.IsNil() {
		return "0"
	}
	return decimal.NewFromBigInt(v.BigInt(), -fixedmath.Decimals).String()
}

// poolView is the display shape of one pool.
type poolView struct {
	Pair         string            `json:"pair"`
	ReserveX     string            `json:"reserve_x"`
	ReserveY     string            `json:"reserve_y"`
	TotalShares  string            `json:"total_shares"`
	SpotPrice    string            `json:"spot_price,omitempty"`
	ActivePreset types.CurvePreset `json:"active_preset"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (ws *WebServer) poolToView(p types.PoolState) poolView {
	view := poolView{
		Pair:         string(p.Pair),
		ReserveX:     formatFixed(p.ReserveX),
		ReserveY:     formatFixed(p.ReserveY),
		TotalShares:  formatFixed(p.TotalShares),
		ActivePreset: p.ActivePreset,
		UpdatedAt:    p.UpdatedAt,
	}
	price, err := ws.engine.CalculatePrice(p.ReserveX, p.ReserveY, p.ActiveConfig)
	if err != nil {
		webLogger.Error().Err(err).Str("pair", string(p.Pair)).Msg("Spot price calculation failed")
	} else {
		view.SpotPrice = formatFixed(price)
	}
	return view
}

func pairFromRequest(r *http.Request) types.PairID {
	vars := mux.Vars(r)
	return types.PairID(vars["base"] + "/" + vars["quote"])
}

// handleHealth returns comprehensive server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	// Get runtime memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hasErrors := false

	// Get database connection status
	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
		hasErrors = true
	}

	pools := ws.ledger.Pools()

	// Determine overall status
	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":            runtime.Version(),
			"goroutines_count":   runtime.NumGoroutine(),
			"total_alloc_bytes":  memStats.TotalAlloc,
			"heap_objects_count": memStats.HeapObjects,
			"alloc_bytes":        memStats.Alloc,
			"sys_bytes":          memStats.Sys,
			"gc_cycles":          memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "hydra-pricing-engine",
			"version": "1.0.0",
		},
		"hydra_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"pool_count":       len(pools),
		},
	}

	// Set appropriate HTTP status code
	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetPools returns all registered pools
func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	pools := ws.ledger.Pools()

	views := make([]poolView, 0, len(pools))
	for _, p := range pools {
		views = append(views, ws.poolToView(p))
	}

	response := map[string]interface{}{
		"pools": views,
		"count": len(views),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPool returns one pool by pair
func (ws *WebServer) handleGetPool(w http.ResponseWriter, r *http.Request) {
	pair := pairFromRequest(r)

	p, err := ws.ledger.Pool(pair)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, ws.poolToView(p))
}

// handleQuoteSwap quotes a swap against current reserves. The input amount
// arrives as a raw 10^18 fixed-point integer string.
func (ws *WebServer) handleQuoteSwap(w http.ResponseWriter, r *http.Request) {
	pair := pairFromRequest(r)

	tokenIn := r.URL.Query().Get("token_in")
	if tokenIn == "" {
		tokenIn = pool.TokenX
	}

	amountStr := r.URL.Query().Get("amount_in")
	amountIn, ok := sdkmath.NewIntFromString(amountStr)
	if !ok || !amountIn.IsPositive() {
		ws.writeErrorResponse(w, http.StatusBadRequest, "amount_in must be a positive fixed-point integer")
		return
	}

	quote, err := ws.ledger.QuoteSwap(pair, tokenIn, amountIn)
	if err != nil {
		webLogger.Error().Err(err).Str("pair", string(pair)).Msg("Swap quote failed")
		ws.writeErrorResponse(w, quoteErrorStatus(err), "Failed to quote swap: "+err.Error())
		return
	}

	if err := state.SaveQuote(quote); err != nil {
		webLogger.Error().Err(err).Str("quoteID", quote.QuoteID).Msg("Failed to persist quote")
	}

	response := map[string]interface{}{
		"quote_id":         quote.QuoteID,
		"pair":             string(quote.Pair),
		"token_in":         quote.TokenIn,
		"amount_in":        formatFixed(quote.AmountIn),
		"amount_out":       formatFixed(quote.AmountOut),
		"fee_amount":       formatFixed(quote.FeeAmount),
		"price_impact_bps": quote.PriceImpactBps.String(),
		"quoted_at":        quote.QuotedAt,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetDepth returns the liquidity depth ladder for a pair
func (ws *WebServer) handleGetDepth(w http.ResponseWriter, r *http.Request) {
	pair := pairFromRequest(r)

	p, err := ws.ledger.Pool(pair)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}

	steps := defaultDepthSteps
	if stepsStr := r.URL.Query().Get("steps"); stepsStr != "" {
		if parsed, err := strconv.Atoi(stepsStr); err == nil && parsed > 0 && parsed <= engine.MaxDepthSteps {
			steps = parsed
		}
	}

	reserveIn := p.ReserveX
	if r.URL.Query().Get("token_in") == pool.TokenY {
		reserveIn = p.ReserveY
	}

	points, err := ws.engine.DepthProfile(reserveIn, p.ActiveConfig, steps)
	if err != nil {
		webLogger.Error().Err(err).Str("pair", string(pair)).Msg("Depth profile failed")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to compute depth profile")
		return
	}

	ladder := make([]map[string]string, 0, len(points))
	for _, pt := range points {
		ladder = append(ladder, map[string]string{
			"amount_in":        formatFixed(pt.AmountIn),
			"amount_out":       formatFixed(pt.AmountOut),
			"price_impact_bps": pt.PriceImpactBps.String(),
		})
	}

	response := map[string]interface{}{
		"pair":  string(pair),
		"steps": len(ladder),
		"depth": ladder,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetRecentQuotes returns recent quote history for a pair
func (ws *WebServer) handleGetRecentQuotes(w http.ResponseWriter, r *http.Request) {
	pair := pairFromRequest(r)

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	quotes, err := state.GetRecentQuotes(pair, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent quotes")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve quotes")
		return
	}

	response := map[string]interface{}{
		"pair":   string(pair),
		"quotes": quotes,
		"count":  len(quotes),
		"limit":  limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPairSummary returns aggregated quoting statistics for a pair
func (ws *WebServer) handleGetPairSummary(w http.ResponseWriter, r *http.Request) {
	pair := pairFromRequest(r)

	summary, err := state.GetPairSummary(pair)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get pair summary")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve pair summary")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, summary)
}

// handleGetParameters returns the active engine parameters
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	params, err := state.LoadActiveEngineParameters(ws.configName)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get engine parameters")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve engine parameters")
		return
	}

	response := map[string]interface{}{
		"parameters": map[string]interface{}{
			"exp_taylor_terms": params.ExpTaylorTerms,
			"swap_fee_bps":     params.SwapFeeBps,
			"max_price_ratio":  formatFixed(params.MaxPriceRatio),
			"min_liquidity":    params.MinLiquidity.String(),
			"min_dwell_cycles": params.MinDwellCycles,
			"score_deadband":   params.ScoreDeadband,
		},
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// quoteErrorStatus maps ledger/engine errors to HTTP status codes.
func quoteErrorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrPoolNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidInput), errors.Is(err, types.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
