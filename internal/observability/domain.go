package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain counts business events. A nil *Domain is a no-op.
type Domain struct {
	quotationsCreated    prometheus.Counter
	quotationTransitions *prometheus.CounterVec
	customerDecisions    *prometheus.CounterVec
	ordersPlaced         *prometheus.CounterVec
	orderTransitions     *prometheus.CounterVec
}

func newDomain(registerer prometheus.Registerer) *Domain {
	d := &Domain{
		quotationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pavilion_quotations_created_total",
			Help: "Quotations persisted as drafts.",
		}),
		quotationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pavilion_quotation_transitions_total",
			Help: "Quotation status changes by source and target status.",
		}, []string{"from", "to"}),
		customerDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pavilion_customer_decisions_total",
			Help: "B2B approval decisions by outcome.",
		}, []string{"status"}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pavilion_orders_placed_total",
			Help: "Orders created by origin.",
		}, []string{"source"}),
		orderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pavilion_order_transitions_total",
			Help: "Order status changes by source and target status.",
		}, []string{"from", "to"}),
	}
	registerer.MustRegister(d.quotationsCreated, d.quotationTransitions, d.customerDecisions, d.ordersPlaced, d.orderTransitions)
	return d
}

func (d *Domain) QuotationCreated() {
	if d == nil {
		return
	}
	d.quotationsCreated.Inc()
}

func (d *Domain) QuotationTransition(from, to string) {
	if d == nil {
		return
	}
	d.quotationTransitions.WithLabelValues(from, to).Inc()
}

func (d *Domain) CustomerDecision(status string) {
	if d == nil {
		return
	}
	d.customerDecisions.WithLabelValues(status).Inc()
}

func (d *Domain) OrderPlaced(source string) {
	if d == nil {
		return
	}
	d.ordersPlaced.WithLabelValues(source).Inc()
}

func (d *Domain) OrderTransition(from, to string) {
	if d == nil {
		return
	}
	d.orderTransitions.WithLabelValues(from, to).Inc()
}
