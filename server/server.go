// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var ErrDuplicateRoute = errors.New("duplicate route")

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout"`
}

func NewDefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Server serves the node API. Every route is wrapped with CORS and gzip.
type Server struct {
	log logging.Logger
	cfg HTTPConfig

	lock   sync.Mutex
	router *mux.Router
	routes map[string]struct{}

	srv      *http.Server
	listener net.Listener
}

func New(
	log logging.Logger,
	listener net.Listener,
	cfg HTTPConfig,
	allowedOrigins []string,
) *Server {
	router := mux.NewRouter()
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(router)
	handler := gziphandler.GzipHandler(corsHandler)

	log.Info("API created",
		zap.Stringer("address", listener.Addr()),
		zap.Strings("allowedOrigins", allowedOrigins),
	)
	return &Server{
		log:    log,
		cfg:    cfg,
		router: router,
		routes: map[string]struct{}{},
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		listener: listener,
	}
}

// AddRoute serves [handler] at [endpoint].
func (s *Server) AddRoute(handler http.Handler, endpoint string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.routes[endpoint]; ok {
		return ErrDuplicateRoute
	}
	s.log.Info("adding route", zap.String("endpoint", endpoint))
	s.routes[endpoint] = struct{}{}
	s.router.Handle(endpoint, handler)
	return nil
}

// Handler returns the wrapped router.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Dispatch serves until [Shutdown] is called.
func (s *Server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
