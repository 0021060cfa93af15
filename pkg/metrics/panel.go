package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// Transition outcomes recorded by ObserveTransition.
const (
	TransitionCompleted = "completed"
	TransitionResumed   = "resumed"
	TransitionNoop      = "noop"
	TransitionConflict  = "conflict"
	TransitionFailed    = "failed"
)

// PanelMetrics records the stock and media activity of the panel API. A nil
// receiver is a no-op so services can run without a registry.
type PanelMetrics struct {
	stockResolutions *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	imageUploads     *prometheus.CounterVec
	listingDuration  *prometheus.HistogramVec
}

// NewPanelMetrics registers the panel metrics on the provided registerer.
func NewPanelMetrics(reg prometheus.Registerer) *PanelMetrics {
	if reg == nil {
		return &PanelMetrics{}
	}
	stockResolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_resolutions_total",
		Help: "Stock resolutions by source (view or legacy fallback).",
	}, []string{"source"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "variant_transitions_total",
		Help: "Legacy to variant transitions by outcome.",
	}, []string{"outcome"})
	imageUploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_uploads_total",
		Help: "Product image uploads by outcome.",
	}, []string{"outcome"})
	listingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "panel_listing_duration_seconds",
		Help:    "Duration of the panel product listing by response status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	reg.MustRegister(stockResolutions, transitions, imageUploads, listingDuration)
	return &PanelMetrics{
		stockResolutions: stockResolutions,
		transitions:      transitions,
		imageUploads:     imageUploads,
		listingDuration:  listingDuration,
	}
}

func (m *PanelMetrics) IncStockSource(source enums.StockSource) {
	if m == nil || m.stockResolutions == nil {
		return
	}
	m.stockResolutions.WithLabelValues(normalizeLabel(string(source))).Inc()
}

func (m *PanelMetrics) IncTransition(outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *PanelMetrics) IncImageUpload(outcome string) {
	if m == nil || m.imageUploads == nil {
		return
	}
	m.imageUploads.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveListing records how long the listing took for the given status class.
func (m *PanelMetrics) ObserveListing(status string, duration time.Duration) {
	if m == nil || m.listingDuration == nil {
		return
	}
	m.listingDuration.WithLabelValues(normalizeLabel(status)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
