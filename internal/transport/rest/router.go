package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"whodunnit/internal/catalog"
	"whodunnit/internal/service"
	"whodunnit/internal/transport/rest/handler"
	"whodunnit/internal/transport/rest/middleware"
	"whodunnit/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	GameService    *service.GameService
	Catalog        *catalog.Catalog
	WSHub          *ws.Hub
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(c.SessionService, c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService)
	scriptHandler := handler.NewScriptHandler(c.Catalog)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/join", sessionHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/accusations", gameHandler.Accusations).Methods("GET", "OPTIONS")

	v1.HandleFunc("/scripts", scriptHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/scripts/{scriptId}", scriptHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/scripts/{scriptId}/characters", scriptHandler.Characters).Methods("GET", "OPTIONS")
	v1.HandleFunc("/scripts/{scriptId}/characters/{name}/rounds/{round}", scriptHandler.CharacterScript).Methods("GET", "OPTIONS")
	v1.HandleFunc("/scripts/{scriptId}/rounds/{round}", scriptHandler.RoundInstructions).Methods("GET", "OPTIONS")

	// WebSocket snapshot feed (token in query param)
	v1.HandleFunc("/ws/sessions/{code}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host token)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/sessions/{code}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/sessions/{code}/advance", gameHandler.Advance).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/sessions/{code}/ready-override", gameHandler.Ready).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/sessions/{code}/virtual-players", sessionHandler.AddVirtualPlayer).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/sessions/{code}/virtual-players/{playerId}", sessionHandler.RemoveVirtualPlayer).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/sessions/{code}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")

	// Player routes (require player token)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/sessions/{code}/ready", gameHandler.Ready).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/{code}/accusations", gameHandler.Accuse).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/{code}/character", sessionHandler.AssignCharacter).Methods("PUT", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/{code}/players/{playerId}", sessionHandler.Leave).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
