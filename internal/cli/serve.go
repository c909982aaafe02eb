package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pipetree/pipetree/pkg/devtree"
	pterrors "github.com/pipetree/pipetree/pkg/errors"
	"github.com/pipetree/pipetree/pkg/pipeline"
)

// serveOpts holds the flag values for the serve command.
type serveOpts struct {
	addr string
}

// newServeCmd creates the serve command: expose a loaded manifest's
// topology over HTTP.
func newServeCmd() *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve <manifest>",
		Short: "Serve device topology over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", ":8080", "listen address")

	return cmd
}

func runServe(cmd *cobra.Command, manifestPath string, opts *serveOpts) error {
	logger := loggerFromContext(cmd.Context())
	printFile(manifestPath)

	tree, pl, err := devtree.Load(manifestPath)
	if err != nil {
		return err
	}
	logger.Info("loaded device graph", "nodes", tree.Len())

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newAPIHandler(tree, pl, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		printSuccess("listening on %s", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-cmd.Context().Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// apiServer serves topology queries against a single loaded tree. The
// tree is immutable after load, so handlers share it without locking.
type apiServer struct {
	tree   *devtree.Tree
	pl     *devtree.Pipeline
	runner *pipeline.Runner
	logger *log.Logger

	resolutions *prometheus.CounterVec
}

// newAPIHandler builds the HTTP API for a loaded device graph.
//
//	GET /healthz                   liveness probe
//	GET /metrics                   Prometheus metrics
//	GET /devices                   list devices with a compatible string
//	GET /devices/{name}/topology   resolve the pipeline rooted at a device
func newAPIHandler(tree *devtree.Tree, pl *devtree.Pipeline, logger *log.Logger) http.Handler {
	s := &apiServer{
		tree:   tree,
		pl:     pl,
		runner: pipeline.NewRunner(logger),
		logger: logger,
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipetree_resolutions_total",
				Help: "Total number of topology resolutions by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(s.resolutions)
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipetree_http_requests_total",
			Help: "Total number of HTTP requests by status code",
		},
		[]string{"code"},
	)
	reg.MustRegister(requests)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			requests.WithLabelValues(strconv.Itoa(ww.Status())).Inc()
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/devices", s.handleDevices)
	r.Get("/devices/{name}/topology", s.handleTopology)

	return r
}

type deviceJSON struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Compatible string `json:"compatible"`
	Available  bool   `json:"available"`
}

func (s *apiServer) handleDevices(w http.ResponseWriter, _ *http.Request) {
	devices := []deviceJSON{}
	for n := range s.tree.Nodes() {
		if n.Compatible() == "" {
			continue
		}
		devices = append(devices, deviceJSON{
			Path:       n.Path(),
			Name:       n.BaseName(),
			Compatible: n.Compatible(),
			Available:  n.Available(),
		})
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *apiServer) handleTopology(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	device := ""
	for n := range s.tree.Nodes() {
		if n.Compatible() == "" || !n.NameIs(name) {
			continue
		}
		if device != "" {
			s.writeError(w, pterrors.New(pterrors.ErrCodeInvalidInput, "device name %s is ambiguous", name))
			return
		}
		device = n.Path()
	}
	if device == "" {
		s.writeError(w, pterrors.New(pterrors.ErrCodeDeviceNotFound, "no device named %s", name))
		return
	}

	result, err := s.runner.Resolve(req.Context(), s.tree, s.pl, pipeline.Options{
		Device: device,
		Logger: s.logger,
	})
	if err != nil {
		s.resolutions.WithLabelValues("error").Inc()
		s.writeError(w, err)
		return
	}

	// A pipeline whose every encoder sink is still unregistered is not
	// resolved yet; tell the client to retry instead of handing out a
	// report with no usable sink.
	deferred := 0
	for _, e := range result.Report.Encoders {
		if e.Deferred {
			deferred++
		}
	}
	if deferred > 0 && deferred == len(result.Report.Encoders) {
		s.resolutions.WithLabelValues("deferred").Inc()
		s.writeError(w, pterrors.New(pterrors.ErrCodeDeferProbe,
			"%d encoder sink(s) not yet registered", deferred))
		return
	}

	s.resolutions.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, result.Report)
}

type errorJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps resolution errors to HTTP status codes. Deferred
// probes are retryable and answered with 503 plus a Retry-After hint;
// topology conflicts map to 409.
func (s *apiServer) writeError(w http.ResponseWriter, err error) {
	code := pterrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case pterrors.ErrCodeInvalidInput, pterrors.ErrCodeInvalidManifest, pterrors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case pterrors.ErrCodeDeviceNotFound, pterrors.ErrCodeEndpointNotFound, pterrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case pterrors.ErrCodeMissingTopology, pterrors.ErrCodeNoAvailablePort:
		status = http.StatusConflict
	case pterrors.ErrCodeDeferProbe:
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "1")
	}
	s.logger.Warn("request failed", "code", code, "status", status, "error", err)
	writeJSON(w, status, errorJSON{Code: string(code), Message: pterrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
