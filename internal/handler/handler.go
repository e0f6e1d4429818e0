package handler

import (
	"context"
	"net/http"

	"github.com/Dan9191/advance-service/internal/integrations/rail"
	"github.com/Dan9191/advance-service/internal/models"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// ReportSource provides the rail settlement report
type ReportSource interface {
	DownloadReport(ctx context.Context) (models.Report, error)
}

// Handler serves the daemon's operational endpoints
type Handler struct {
	reports  ReportSource
	gatherer prometheus.Gatherer
	log      *logrus.Logger
}

func NewHandler(reports ReportSource, gatherer prometheus.Gatherer, log *logrus.Logger) *Handler {
	return &Handler{reports: reports, gatherer: gatherer, log: log}
}

// Router registers the ops routes
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/report", h.Report).Methods("GET")
	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok")) // nolint:errcheck
}

// Report downloads the settlement report from the rail and returns it as XML
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.DownloadReport(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to download report")
		http.Error(w, "Failed to download report", http.StatusBadGateway)
		return
	}
	body, err := rail.EncodeReport(report)
	if err != nil {
		http.Error(w, "Failed to encode report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(body) // nolint:errcheck
}
