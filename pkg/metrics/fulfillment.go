package metrics

import "github.com/prometheus/client_golang/prometheus"

// FulfillmentMetrics tracks the order lifecycle counters exposed by the API
// and reconciliation workers.
type FulfillmentMetrics struct {
	ordersCreated       prometheus.Counter
	ordersAssigned      *prometheus.CounterVec
	ordersUnassigned    prometheus.Counter
	deliveriesCompleted prometheus.Counter
}

// NewFulfillmentMetrics registers order lifecycle metrics on the registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created at checkout.",
	})
	assigned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_assigned_total",
		Help: "Orders matched to a delivery agent, by source.",
	}, []string{"source"})
	unassigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_unassigned_total",
		Help: "Orders created without an available agent.",
	})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deliveries_completed_total",
		Help: "Schedule entries marked delivered.",
	})
	reg.MustRegister(created, assigned, unassigned, completed)
	return &FulfillmentMetrics{
		ordersCreated:       created,
		ordersAssigned:      assigned,
		ordersUnassigned:    unassigned,
		deliveriesCompleted: completed,
	}
}

// IncOrdersCreated bumps the created counter.
func (f *FulfillmentMetrics) IncOrdersCreated() {
	if f == nil || f.ordersCreated == nil {
		return
	}
	f.ordersCreated.Inc()
}

// IncOrdersAssigned bumps the assigned counter for the given source,
// either checkout or reconcile.
func (f *FulfillmentMetrics) IncOrdersAssigned(source string) {
	if f == nil || f.ordersAssigned == nil {
		return
	}
	f.ordersAssigned.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncOrdersUnassigned bumps the unassigned counter.
func (f *FulfillmentMetrics) IncOrdersUnassigned() {
	if f == nil || f.ordersUnassigned == nil {
		return
	}
	f.ordersUnassigned.Inc()
}

// AddDeliveriesCompleted records n schedule entries flipped to delivered.
func (f *FulfillmentMetrics) AddDeliveriesCompleted(n int) {
	if f == nil || f.deliveriesCompleted == nil || n <= 0 {
		return
	}
	f.deliveriesCompleted.Add(float64(n))
}
