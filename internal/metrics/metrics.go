package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder collects reminder and persistence counters. A nil *Recorder is a no-op.
type Recorder struct {
	sent            *prom.CounterVec
	suppressed      *prom.CounterVec
	deliveryFailed  *prom.CounterVec
	persistFailed   prom.Counter
	confirmations   *prom.CounterVec
	registeredUsers prom.Gauge
}

// New constructs the recorder and registers it on reg (a fresh registry when nil).
func New(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		sent: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vitamins",
			Name:      "reminders_sent_total",
			Help:      "Reminder messages delivered by slot and message variant",
		}, []string{"slot", "variant"}),
		suppressed: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vitamins",
			Name:      "reminders_suppressed_total",
			Help:      "Slot firings that sent nothing because the dose was already taken",
		}, []string{"slot"}),
		deliveryFailed: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vitamins",
			Name:      "delivery_failures_total",
			Help:      "Reminder messages the transport failed to deliver",
		}, []string{"slot"}),
		persistFailed: prom.NewCounter(prom.CounterOpts{
			Namespace: "vitamins",
			Name:      "persist_failures_total",
			Help:      "State store writes that failed",
		}),
		confirmations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vitamins",
			Name:      "confirmations_total",
			Help:      "Doses confirmed by users",
		}, []string{"dose"}),
		registeredUsers: prom.NewGauge(prom.GaugeOpts{
			Namespace: "vitamins",
			Name:      "registered_users",
			Help:      "Users with installed reminder schedules",
		}),
	}
	reg.MustRegister(r.sent, r.suppressed, r.deliveryFailed, r.persistFailed, r.confirmations, r.registeredUsers)
	return r
}

func (r *Recorder) IncSent(slot, variant string) {
	if r == nil {
		return
	}
	r.sent.WithLabelValues(slot, variant).Inc()
}

func (r *Recorder) IncSuppressed(slot string) {
	if r == nil {
		return
	}
	r.suppressed.WithLabelValues(slot).Inc()
}

func (r *Recorder) IncDeliveryFailure(slot string) {
	if r == nil {
		return
	}
	r.deliveryFailed.WithLabelValues(slot).Inc()
}

func (r *Recorder) IncPersistFailure() {
	if r == nil {
		return
	}
	r.persistFailed.Inc()
}

func (r *Recorder) IncConfirmation(dose string) {
	if r == nil {
		return
	}
	r.confirmations.WithLabelValues(dose).Inc()
}

func (r *Recorder) SetRegisteredUsers(n int) {
	if r == nil {
		return
	}
	r.registeredUsers.Set(float64(n))
}
