package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
	"github.com/saulet/grocery-compare/internal/cart/usecase/command"
	"github.com/saulet/grocery-compare/internal/cart/usecase/query"
	"github.com/saulet/grocery-compare/pkg/logger"
)

// CartHandler exposes the favorites/cart/route API over HTTP using the
// CQRS handlers. Identity arrives in X-User-ID / X-Demo headers set by
// the gateway.
type CartHandler struct {
	// Command handlers
	addFavorite           *command.AddFavoriteHandler
	removeFavorite        *command.RemoveFavoriteHandler
	addProductFavorite    *command.AddProductFavoriteHandler
	removeProductFavorite *command.RemoveProductFavoriteHandler
	addStoreFavorite      *command.AddStoreFavoriteHandler
	removeStoreFavorite   *command.RemoveStoreFavoriteHandler
	addCartItem           *command.AddCartItemHandler
	updateCartQuantity    *command.UpdateCartQuantityHandler
	removeCartItem        *command.RemoveCartItemHandler
	clearCart             *command.ClearCartHandler

	// Query handlers
	getCart         *query.GetCartHandler
	getStats        *query.GetStatsHandler
	getRoute        *query.GetRouteHandler
	checkMembership *query.CheckMembershipHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestSummary *prometheus.SummaryVec
}

// NewCartHandler creates the handler with manual DI.
func NewCartHandler(sessions *reconcile.Manager) *CartHandler {
	return newCartHandler(
		command.NewAddFavoriteHandler(sessions),
		command.NewRemoveFavoriteHandler(sessions),
		command.NewAddProductFavoriteHandler(sessions),
		command.NewRemoveProductFavoriteHandler(sessions),
		command.NewAddStoreFavoriteHandler(sessions),
		command.NewRemoveStoreFavoriteHandler(sessions),
		command.NewAddCartItemHandler(sessions),
		command.NewUpdateCartQuantityHandler(sessions),
		command.NewRemoveCartItemHandler(sessions),
		command.NewClearCartHandler(sessions),
		query.NewGetCartHandler(sessions),
		query.NewGetStatsHandler(sessions),
		query.NewGetRouteHandler(sessions),
		query.NewCheckMembershipHandler(sessions),
	)
}

// NewCartHandlerWithDI creates the handler for Wire injection.
func NewCartHandlerWithDI(
	addFavorite *command.AddFavoriteHandler,
	removeFavorite *command.RemoveFavoriteHandler,
	addProductFavorite *command.AddProductFavoriteHandler,
	removeProductFavorite *command.RemoveProductFavoriteHandler,
	addStoreFavorite *command.AddStoreFavoriteHandler,
	removeStoreFavorite *command.RemoveStoreFavoriteHandler,
	addCartItem *command.AddCartItemHandler,
	updateCartQuantity *command.UpdateCartQuantityHandler,
	removeCartItem *command.RemoveCartItemHandler,
	clearCart *command.ClearCartHandler,
	getCart *query.GetCartHandler,
	getStats *query.GetStatsHandler,
	getRoute *query.GetRouteHandler,
	checkMembership *query.CheckMembershipHandler,
) *CartHandler {
	return newCartHandler(
		addFavorite, removeFavorite,
		addProductFavorite, removeProductFavorite,
		addStoreFavorite, removeStoreFavorite,
		addCartItem, updateCartQuantity, removeCartItem, clearCart,
		getCart, getStats, getRoute, checkMembership,
	)
}

func newCartHandler(
	addFavorite *command.AddFavoriteHandler,
	removeFavorite *command.RemoveFavoriteHandler,
	addProductFavorite *command.AddProductFavoriteHandler,
	removeProductFavorite *command.RemoveProductFavoriteHandler,
	addStoreFavorite *command.AddStoreFavoriteHandler,
	removeStoreFavorite *command.RemoveStoreFavoriteHandler,
	addCartItem *command.AddCartItemHandler,
	updateCartQuantity *command.UpdateCartQuantityHandler,
	removeCartItem *command.RemoveCartItemHandler,
	clearCart *command.ClearCartHandler,
	getCart *query.GetCartHandler,
	getStats *query.GetStatsHandler,
	getRoute *query.GetRouteHandler,
	checkMembership *query.CheckMembershipHandler,
) *CartHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_service_requests_total",
			Help: "Total number of requests to cart service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cart_service_request_duration_seconds",
			Help:    "Duration of cart service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	requestSummary := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "cart_service_request_duration_summary",
			Help: "Summary of request durations with client-side quantiles",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter, requestLatency, requestSummary)

	return &CartHandler{
		addFavorite:           addFavorite,
		removeFavorite:        removeFavorite,
		addProductFavorite:    addProductFavorite,
		removeProductFavorite: removeProductFavorite,
		addStoreFavorite:      addStoreFavorite,
		removeStoreFavorite:   removeStoreFavorite,
		addCartItem:           addCartItem,
		updateCartQuantity:    updateCartQuantity,
		removeCartItem:        removeCartItem,
		clearCart:             clearCart,
		getCart:               getCart,
		getStats:              getStats,
		getRoute:              getRoute,
		checkMembership:       checkMembership,
		requestCounter:        requestCounter,
		requestLatency:        requestLatency,
		requestSummary:        requestSummary,
	}
}

// RegisterRoutes mounts all endpoints on the router.
func (h *CartHandler) RegisterRoutes(router *mux.Router) {
	router.Use(LoggingMiddleware)
	router.Use(TracingMiddleware)

	router.HandleFunc("/cart", h.handleGetCart).Methods(http.MethodGet)
	router.HandleFunc("/cart", h.handleClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/cart/items", h.handleAddCartItem).Methods(http.MethodPost)
	router.HandleFunc("/cart/items/{productID}", h.handleUpdateCartQuantity).Methods(http.MethodPut)
	router.HandleFunc("/cart/items/{productID}", h.handleRemoveCartItem).Methods(http.MethodDelete)
	router.HandleFunc("/cart/stats", h.handleGetStats).Methods(http.MethodGet)
	router.HandleFunc("/cart/route", h.handleGetRoute).Methods(http.MethodGet)

	router.HandleFunc("/favorites", h.handleAddFavorite).Methods(http.MethodPost)
	router.HandleFunc("/favorites/products", h.handleAddProductFavorite).Methods(http.MethodPost)
	router.HandleFunc("/favorites/products/{nameEn}", h.handleRemoveProductFavorite).Methods(http.MethodDelete)
	router.HandleFunc("/favorites/stores", h.handleAddStoreFavorite).Methods(http.MethodPost)
	router.HandleFunc("/favorites/stores/{supermarketID}", h.handleRemoveStoreFavorite).Methods(http.MethodDelete)
	router.HandleFunc("/favorites/{productID}", h.handleRemoveFavorite).Methods(http.MethodDelete)

	router.HandleFunc("/checks", h.handleChecks).Methods(http.MethodGet)
}

type identity struct {
	UserID string
	Demo   bool
}

func identityFromRequest(r *http.Request) identity {
	return identity{
		UserID: r.Header.Get("X-User-ID"),
		Demo:   r.Header.Get("X-Demo") == "true",
	}
}

// mutationResponse is the uniform outcome envelope: failure is payload,
// not transport error.
type mutationResponse struct {
	Success bool `json:"success"`
}

func (h *CartHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

func (h *CartHandler) writeOutcome(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time, ok bool) {
	h.observe(r.Method, endpoint, http.StatusOK, start)
	h.writeJSON(w, http.StatusOK, mutationResponse{Success: ok})
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time, status int, msg string) {
	h.observe(r.Method, endpoint, status, start)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *CartHandler) observe(method, endpoint string, status int, start time.Time) {
	elapsed := time.Since(start).Seconds()
	h.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	h.requestLatency.WithLabelValues(method, endpoint).Observe(elapsed)
	h.requestSummary.WithLabelValues(method, endpoint).Observe(elapsed)
}

func pathID(r *http.Request, name string) uint {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// --- Cart endpoints ---

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)
	snapshot, err := h.getCart.Handle(r.Context(), query.GetCartQuery{UserID: id.UserID, Demo: id.Demo})
	if err != nil {
		h.writeError(w, r, "/cart", start, http.StatusBadRequest, err.Error())
		return
	}
	h.observe(r.Method, "/cart", http.StatusOK, start)
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *CartHandler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	var req struct {
		ProductID uint   `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Notes     string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "/cart/items", start, http.StatusBadRequest, "invalid request body")
		return
	}

	ok := h.addCartItem.Handle(r.Context(), command.AddCartItemCommand{
		UserID:    id.UserID,
		Demo:      id.Demo,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	})
	h.writeOutcome(w, r, "/cart/items", start, ok)
}

func (h *CartHandler) handleUpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "/cart/items/{productID}", start, http.StatusBadRequest, "invalid request body")
		return
	}

	ok := h.updateCartQuantity.Handle(r.Context(), command.UpdateCartQuantityCommand{
		UserID:    id.UserID,
		Demo:      id.Demo,
		ProductID: pathID(r, "productID"),
		Quantity:  req.Quantity,
	})
	h.writeOutcome(w, r, "/cart/items/{productID}", start, ok)
}

func (h *CartHandler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	ok := h.removeCartItem.Handle(r.Context(), command.RemoveCartItemCommand{
		UserID:    id.UserID,
		Demo:      id.Demo,
		ProductID: pathID(r, "productID"),
	})
	h.writeOutcome(w, r, "/cart/items/{productID}", start, ok)
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	ok := h.clearCart.Handle(r.Context(), command.ClearCartCommand{UserID: id.UserID, Demo: id.Demo})
	h.writeOutcome(w, r, "/cart", start, ok)
}

func (h *CartHandler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	stats, err := h.getStats.Handle(r.Context(), query.GetStatsQuery{UserID: id.UserID, Demo: id.Demo})
	if err != nil {
		h.writeError(w, r, "/cart/stats", start, http.StatusBadRequest, err.Error())
		return
	}
	h.observe(r.Method, "/cart/stats", http.StatusOK, start)
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *CartHandler) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	route, err := h.getRoute.Handle(r.Context(), query.GetRouteQuery{UserID: id.UserID, Demo: id.Demo})
	if err != nil {
		h.writeError(w, r, "/cart/route", start, http.StatusBadRequest, err.Error())
		return
	}
	if route == nil {
		// Nothing to plan; distinct from an empty route object.
		h.observe(r.Method, "/cart/route", http.StatusNoContent, start)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.observe(r.Method, "/cart/route", http.StatusOK, start)
	h.writeJSON(w, http.StatusOK, route)
}

// --- Favorites endpoints ---

func (h *CartHandler) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "/favorites", start, http.StatusBadRequest, "invalid request body")
		return
	}

	ok := h.addFavorite.Handle(r.Context(), command.AddFavoriteCommand{
		UserID:    id.UserID,
		Demo:      id.Demo,
		ProductID: req.ProductID,
	})
	h.writeOutcome(w, r, "/favorites", start, ok)
}

func (h *CartHandler) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	ok := h.removeFavorite.Handle(r.Context(), command.RemoveFavoriteCommand{
		UserID:    id.UserID,
		Demo:      id.Demo,
		ProductID: pathID(r, "productID"),
	})
	h.writeOutcome(w, r, "/favorites/{productID}", start, ok)
}

func (h *CartHandler) handleAddProductFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	var req struct {
		NameEn   string `json:"name_en"`
		NameZh   string `json:"name_zh"`
		Image    string `json:"image"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "/favorites/products", start, http.StatusBadRequest, "invalid request body")
		return
	}

	ok := h.addProductFavorite.Handle(r.Context(), command.AddProductFavoriteCommand{
		UserID:   id.UserID,
		Demo:     id.Demo,
		NameEn:   req.NameEn,
		NameZh:   req.NameZh,
		Image:    req.Image,
		Category: req.Category,
	})
	h.writeOutcome(w, r, "/favorites/products", start, ok)
}

func (h *CartHandler) handleRemoveProductFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	ok := h.removeProductFavorite.Handle(r.Context(), command.RemoveProductFavoriteCommand{
		UserID: id.UserID,
		Demo:   id.Demo,
		NameEn: mux.Vars(r)["nameEn"],
	})
	h.writeOutcome(w, r, "/favorites/products/{nameEn}", start, ok)
}

func (h *CartHandler) handleAddStoreFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	var req struct {
		SupermarketID uint `json:"supermarket_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "/favorites/stores", start, http.StatusBadRequest, "invalid request body")
		return
	}

	ok := h.addStoreFavorite.Handle(r.Context(), command.AddStoreFavoriteCommand{
		UserID:        id.UserID,
		Demo:          id.Demo,
		SupermarketID: req.SupermarketID,
	})
	h.writeOutcome(w, r, "/favorites/stores", start, ok)
}

func (h *CartHandler) handleRemoveStoreFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	ok := h.removeStoreFavorite.Handle(r.Context(), command.RemoveStoreFavoriteCommand{
		UserID:        id.UserID,
		Demo:          id.Demo,
		SupermarketID: pathID(r, "supermarketID"),
	})
	h.writeOutcome(w, r, "/favorites/stores/{supermarketID}", start, ok)
}

// --- Checks ---

func (h *CartHandler) handleChecks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := identityFromRequest(r)

	q := CheckQueryFromValues(r)
	result, err := h.checkMembership.Handle(r.Context(), query.CheckMembershipQuery{
		UserID:        id.UserID,
		Demo:          id.Demo,
		ProductID:     q.ProductID,
		NameEn:        q.NameEn,
		SupermarketID: q.SupermarketID,
	})
	if err != nil {
		h.writeError(w, r, "/checks", start, http.StatusBadRequest, err.Error())
		return
	}
	h.observe(r.Method, "/checks", http.StatusOK, start)
	h.writeJSON(w, http.StatusOK, result)
}

// CheckQuery carries the parsed /checks query parameters.
type CheckQuery struct {
	ProductID     uint
	NameEn        string
	SupermarketID uint
}

// CheckQueryFromValues parses optional query params, treating malformed
// ids as unset.
func CheckQueryFromValues(r *http.Request) CheckQuery {
	values := r.URL.Query()
	q := CheckQuery{NameEn: values.Get("name_en")}
	if raw := values.Get("product_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			q.ProductID = uint(id)
		}
	}
	if raw := values.Get("supermarket_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			q.SupermarketID = uint(id)
		}
	}
	return q
}
