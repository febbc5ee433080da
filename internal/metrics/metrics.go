// Package metrics records fleet operation and occupancy metrics in a private
// Prometheus registry that the CLI can dump as a node-exporter textfile.
package metrics

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kompox/cloudmeta/domain/model"
)

// Recorder holds the cloudmeta collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	fleetItems         *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	occupancyRemaining *prometheus.GaugeVec
	occupancyTotal     *prometheus.GaugeVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fleetItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudmeta_fleet_items_total",
			Help: "Instances and tenant networks processed by bulk operations, by outcome",
		}, []string{"provider", "action", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cloudmeta_operation_duration_seconds",
			Help:    "Duration of bulk fleet operations in seconds",
			Buckets: []float64{.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"provider", "action"}),
		occupancyRemaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cloudmeta_occupancy_remaining",
			Help: "Instances of a size that still fit on the hypervisor pool (+Inf when unbounded)",
		}, []string{"provider", "size"}),
		occupancyTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cloudmeta_occupancy_total",
			Help: "Instances of a size that fit on the empty hypervisor pool (+Inf when unbounded)",
		}, []string{"provider", "size"}),
	}
	r.registry.MustRegister(r.fleetItems, r.operationDuration, r.occupancyRemaining, r.occupancyTotal)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// IncFleetItem counts one processed item.
func (r *Recorder) IncFleetItem(provider string, action model.OperationAction, outcome model.ItemOutcome) {
	if r == nil {
		return
	}
	r.fleetItems.WithLabelValues(provider, string(action), string(outcome)).Inc()
}

// ObserveOperation records the duration of a bulk operation.
func (r *Recorder) ObserveOperation(provider string, action model.OperationAction, d time.Duration) {
	if r == nil {
		return
	}
	r.operationDuration.WithLabelValues(provider, string(action)).Observe(d.Seconds())
}

// SetOccupancy publishes the occupancy of every annotated size.
func (r *Recorder) SetOccupancy(provider string, sizes []*model.Size) {
	if r == nil {
		return
	}
	for _, s := range sizes {
		if s.Occupancy == nil {
			continue
		}
		r.occupancyRemaining.WithLabelValues(provider, s.Name).Set(gaugeValue(s.Occupancy.Remaining))
		r.occupancyTotal.WithLabelValues(provider, s.Name).Set(gaugeValue(s.Occupancy.Total))
	}
}

func gaugeValue(c model.Count) float64 {
	if v, ok := c.Value(); ok {
		return float64(v)
	}
	return math.Inf(1)
}

// WriteTextfile writes the registry in the text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
