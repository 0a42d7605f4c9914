package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gloworm-vision/colorlight/device"
	"github.com/gloworm-vision/colorlight/store"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

type Server struct {
	HTTPAddr string
	OSCAddr  string

	State  *device.State
	Store  store.Store
	Logger *logrus.Logger
}

// Handler routes the HTTP API. Unknown routes and methods get a JSON 404.
func (s *Server) Handler() http.Handler {
	mux := httprouter.New()
	mux.HandleMethodNotAllowed = false
	mux.NotFound = http.HandlerFunc(s.notFound)
	mux.PanicHandler = s.panicked

	mux.HandlerFunc(http.MethodGet, "/", s.form)
	mux.HandlerFunc(http.MethodPost, "/", s.form)

	mux.HandlerFunc(http.MethodGet, "/color", s.getColor)
	mux.HandlerFunc(http.MethodPut, "/color", s.putColor)

	mux.HandlerFunc(http.MethodGet, "/hardware", s.getHardware)
	mux.HandlerFunc(http.MethodPut, "/hardware", s.putHardware)

	return mux
}

// Run serves HTTP and OSC until ctx is done or either of them fails. Failing
// to bind the OSC socket is returned before anything is served.
func (s *Server) Run(ctx context.Context) error {
	listener := &OSCListener{Addr: s.OSCAddr, State: s.State, Logger: s.Logger}
	if err := listener.Listen(); err != nil {
		return fmt.Errorf("unable to initialize osc: %w", err)
	}

	return s.serve(ctx, listener)
}

// serve runs HTTP alongside an already bound OSC listener. When the OSC loop
// fails the HTTP server is shut down and the OSC error returned.
func (s *Server) serve(ctx context.Context, listener *OSCListener) error {
	httpServer := &http.Server{
		Addr:              s.HTTPAddr,
		Handler:           s.Handler(),
		ReadTimeout:       time.Second * 15,
		ReadHeaderTimeout: time.Second * 15,
		IdleTimeout:       time.Second * 30,
		MaxHeaderBytes:    4096,
	}

	listenErrs := make(chan error, 1)
	go func() {
		s.Logger.WithField("addr", s.HTTPAddr).Info("serving http")
		listenErrs <- httpServer.ListenAndServe()
	}()

	oscCtx, cancelOSC := context.WithCancel(ctx)
	defer cancelOSC()

	oscErrs := make(chan error, 1)
	go func() {
		s.Logger.WithField("addr", listener.LocalAddr()).Info("serving osc")
		oscErrs <- listener.Serve(oscCtx)
	}()

	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	}

	select {
	case err := <-listenErrs:
		return err
	case err := <-oscErrs:
		if shutdownErr := shutdown(); shutdownErr != nil {
			s.Logger.WithError(shutdownErr).Error("unable to shut down http server")
		}
		return err
	case <-ctx.Done():
		return shutdown()
	}
}
