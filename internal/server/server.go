/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
generation pipeline, the plan store, and the Gemini client together.
*/
package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"nutriplan/internal/gemini"
	"nutriplan/internal/planner"
	"nutriplan/internal/planstore"
)

// Server holds the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// store persists generated plans.
	store planstore.Service

	// planner runs the generation pipeline.
	planner *planner.Service
}

// NewServer initializes the service graph and returns a configured
// *http.Server with production-ready network timeouts.
func NewServer(store planstore.Service) *http.Server {
	// Attempt to parse port from environment; fallback to 8080 if not set or invalid.
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port == 0 {
		port = 8080
	}

	model := gemini.NewClient(os.Getenv("GEMINI_API_KEY"), log.Logger)

	app := &Server{
		port:    port,
		store:   store,
		planner: planner.NewService(model, log.Logger),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,      // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second, // Maximum duration for reading the entire request.
		WriteTimeout: 90 * time.Second, // Generation calls can take tens of seconds.
	}

	return server
}
