/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api exposes the reachability cache, the sweep scheduler and
// on-demand device telemetry over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/routerwatch/pkg/inventory"
	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
	"github.com/carverauto/routerwatch/pkg/scheduler"
	"github.com/carverauto/routerwatch/pkg/sshexec"
	"github.com/carverauto/routerwatch/pkg/statuscache"
	"github.com/carverauto/routerwatch/pkg/telemetry"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 5 * time.Minute
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	maxBodyBytes           = 1 << 20
)

var errInvalidID = errors.New("invalid device id")

// DeviceProvider resolves devices for probes and sweeps.
type DeviceProvider interface {
	scheduler.DeviceListProvider
	Device(ctx context.Context, id int64) (*models.Device, error)
}

// Server is the routerwatch HTTP API.
type Server struct {
	router        *mux.Router
	handler       http.Handler
	corsConfig    models.CORSConfig
	cache         *statuscache.Store
	prober        Prober
	scheduler     SweepController
	devices       DeviceProvider
	telemetry     Telemetry
	metrics       http.Handler
	metricsPath   string
	baseCtx       context.Context
	sweepInterval time.Duration
	logger        logger.Logger
}

func WithCache(cache *statuscache.Store) func(*Server) {
	return func(s *Server) {
		s.cache = cache
	}
}

func WithProber(p Prober) func(*Server) {
	return func(s *Server) {
		s.prober = p
	}
}

func WithScheduler(sc SweepController) func(*Server) {
	return func(s *Server) {
		s.scheduler = sc
	}
}

func WithDevices(d DeviceProvider) func(*Server) {
	return func(s *Server) {
		s.devices = d
	}
}

func WithTelemetry(t Telemetry) func(*Server) {
	return func(s *Server) {
		s.telemetry = t
	}
}

// WithMetricsHandler mounts h at path. An empty path uses /metrics.
func WithMetricsHandler(path string, h http.Handler) func(*Server) {
	return func(s *Server) {
		if path == "" {
			path = models.DefaultMetricsPath
		}

		s.metricsPath = path
		s.metrics = h
	}
}

// WithBaseContext sets the context that owns scheduler loops started over
// HTTP. Request contexts end with the response and cannot be used for that.
func WithBaseContext(ctx context.Context) func(*Server) {
	return func(s *Server) {
		s.baseCtx = ctx
	}
}

// WithSweepInterval sets the interval used when a start request omits one.
func WithSweepInterval(d time.Duration) func(*Server) {
	return func(s *Server) {
		s.sweepInterval = d
	}
}

func WithLogger(log logger.Logger) func(*Server) {
	return func(s *Server) {
		s.logger = log
	}
}

// NewServer builds the router. Route groups whose collaborators were not
// supplied are left unregistered.
func NewServer(corsConfig models.CORSConfig, options ...func(*Server)) *Server {
	s := &Server{
		router:        mux.NewRouter().UseEncodedPath(),
		corsConfig:    corsConfig,
		baseCtx:       context.Background(),
		sweepInterval: scheduler.DefaultInterval,
	}

	for _, o := range options {
		o(s)
	}

	s.logger = logger.Component(s.logger, "api")
	s.setupRoutes()

	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes registers the routes. Middleware wraps the whole router so
// preflight requests are answered even though no route accepts OPTIONS.
func (s *Server) setupRoutes() {
	s.handler = CommonMiddleware(s.router, s.corsConfig, s.logger)

	if s.metrics != nil {
		s.router.Handle(s.metricsPath, s.metrics).Methods(http.MethodGet)
	}

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	if s.cache != nil {
		v1.HandleFunc("/ping/status", s.getAllStatuses).Methods(http.MethodGet)
		v1.HandleFunc("/ping/status/{id}", s.getStatus).Methods(http.MethodGet)
		v1.HandleFunc("/ping/summary", s.getSummary).Methods(http.MethodGet)
	}

	if s.prober != nil && s.devices != nil {
		v1.HandleFunc("/ping/devices/{id}", s.probeDevice).Methods(http.MethodPost)
		v1.HandleFunc("/ping/batch", s.probeBatch).Methods(http.MethodPost)
	}

	if s.scheduler != nil && s.devices != nil {
		v1.HandleFunc("/scheduler", s.getSchedulerStatus).Methods(http.MethodGet)
		v1.HandleFunc("/scheduler/start", s.startScheduler).Methods(http.MethodPost)
		v1.HandleFunc("/scheduler/stop", s.stopScheduler).Methods(http.MethodPost)
		v1.HandleFunc("/scheduler/sweep", s.sweepNow).Methods(http.MethodPost)
	}

	if s.telemetry != nil {
		v1.HandleFunc("/devices/{id}/ospf", s.getOSPF).Methods(http.MethodGet)
		v1.HandleFunc("/devices/{id}/bgp", s.getBGP).Methods(http.MethodGet)
		v1.HandleFunc("/devices/{id}/transceivers", s.getTransceivers).Methods(http.MethodGet)
		v1.HandleFunc("/devices/{id}/transceivers/stats", s.getTransceiverStats).Methods(http.MethodGet)
		v1.HandleFunc("/devices/{id}/transceivers/{iface}", s.getSFPInfo).Methods(http.MethodGet)
		v1.HandleFunc("/devices/{id}/transceivers/{iface}/stats", s.getSFPStats).Methods(http.MethodGet)
		v1.HandleFunc("/devices/{id}/connection", s.getConnection).Methods(http.MethodGet)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP API")

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP API: %w", err)
	}

	return nil
}

func (s *Server) getAllStatuses(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cache.GetAll())
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	status, ok := s.cache.Get(id)
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "not_found",
			fmt.Sprintf("no status recorded for device %d", id))

		return
	}

	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) getSummary(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cache.Summary())
}

func (s *Server) probeDevice(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	device, err := s.devices.Device(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.prober.Probe(r.Context(), device))
}

func (s *Server) probeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var devices []models.Device

	if len(req.DeviceIDs) == 0 {
		active, err := s.devices.ActiveDevices(r.Context())
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: %w", scheduler.ErrInventory, err))
			return
		}

		devices = active
	} else {
		devices = make([]models.Device, 0, len(req.DeviceIDs))

		for _, id := range req.DeviceIDs {
			device, err := s.devices.Device(r.Context(), id)
			if err != nil {
				s.writeError(w, err)
				return
			}

			devices = append(devices, *device)
		}
	}

	results := s.prober.ProbeAll(r.Context(), devices)

	resp := BatchResponse{Results: results, Total: len(results)}

	for i := range results {
		if results[i].IsAlive {
			resp.Alive++
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getSchedulerStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.scheduler.Status())
}

func (s *Server) startScheduler(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	interval := req.Interval.Std()
	if interval <= 0 {
		interval = s.sweepInterval
	}

	status, started := s.scheduler.Start(s.baseCtx, s.devices, interval)

	resp := StartResponse{Started: started, Status: status, Message: "sweep scheduler started"}
	if !started {
		resp.Message = "already running"
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) stopScheduler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.scheduler.Stop())
}

func (s *Server) sweepNow(w http.ResponseWriter, r *http.Request) {
	result, err := s.scheduler.SweepNow(r.Context(), s.devices)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) getOSPF(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	table, err := s.telemetry.OSPFNeighbors(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, table)
}

func (s *Server) getBGP(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	summary, err := s.telemetry.BGPSummary(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) getSFPInfo(w http.ResponseWriter, r *http.Request) {
	id, iface, err := deviceInterface(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	reading, err := s.telemetry.SFPInfo(r.Context(), id, iface)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, reading)
}

func (s *Server) getSFPStats(w http.ResponseWriter, r *http.Request) {
	id, iface, err := deviceInterface(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	stats, err := s.telemetry.SFPStats(r.Context(), id, iface)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getTransceivers(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	readings, err := s.telemetry.Transceivers(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, readings)
}

func (s *Server) getTransceiverStats(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	stats, err := s.telemetry.TransceiverStats(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getConnection(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	connected, err := s.telemetry.TestConnection(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ConnectionResponse{DeviceID: id, Connected: connected})
}

func deviceID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidID, raw)
	}

	return id, nil
}

// deviceInterface returns the device id and the decoded interface name.
// Names such as Gi0/1 arrive percent-encoded.
func deviceInterface(r *http.Request) (int64, string, error) {
	id, err := deviceID(r)
	if err != nil {
		return 0, "", err
	}

	iface, err := url.PathUnescape(mux.Vars(r)["iface"])
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", telemetry.ErrInvalidInterface, err)
	}

	return id, iface, nil
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

// decodeOptionalBody decodes a JSON body into dst. An empty body is not an error.
func decodeOptionalBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	return &requestError{err: fmt.Errorf("invalid request body: %w", err)}
}

// errorStatus maps an error to its HTTP status and kind.
func errorStatus(err error) (int, string) {
	var reqErr *requestError

	switch {
	case errors.As(err, &reqErr), errors.Is(err, errInvalidID), errors.Is(err, telemetry.ErrInvalidInterface):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, inventory.ErrDeviceNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, scheduler.ErrInventory):
		return http.StatusBadGateway, "inventory"
	case errors.Is(err, sshexec.ErrTimeout):
		return http.StatusGatewayTimeout, sshexec.Kind(err)
	case errors.Is(err, sshexec.ErrAuthenticationFailure),
		errors.Is(err, sshexec.ErrCommandFailure),
		errors.Is(err, sshexec.ErrConnectionFailure):
		return http.StatusBadGateway, sshexec.Kind(err)
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, kind := errorStatus(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("kind", kind).Msg("Request failed")
	}

	writeErrorResponse(w, status, kind, err.Error())
}

func writeErrorResponse(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Kind: kind}); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
