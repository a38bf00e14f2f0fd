package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It covers the chat-bot traffic, the reminder pipeline and the
// exception detector.
type Metrics struct {
	CommandReceived    *prometheus.CounterVec   // Counter for received commands and callbacks
	SentMessages       *prometheus.CounterVec   // Counter for messages sent by the bot
	RemindersGenerated prometheus.Counter       // Counter for newly created reminder rows
	RemindersSent      *prometheus.CounterVec   // Counter for delivered reminders by type
	ExceptionsCreated  *prometheus.CounterVec   // Counter for recorded exceptions by kind
	TickDuration       *prometheus.HistogramVec // Histogram for scheduler tick phase durations
}

// NewMetrics creates a new Metrics instance with the provided Prometheus Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CommandReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Total number of used commands and callbacks",
		}, []string{"command"}), // command: /start, start_shift, lunch_start, ...
		SentMessages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_messages_sent_total",
			Help: "Output bot activity",
		}, []string{"type"}), // type: text, reply, error, document
		RemindersGenerated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "scheduler_reminders_generated_total",
			Help: "Total number of reminder rows created by the generator",
		}),
		RemindersSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_reminders_sent_total",
			Help: "Total number of reminders delivered to a chat",
		}, []string{"type"}), // type: pre_start, lunch_start, lunch_end, pre_end
		ExceptionsCreated: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_exceptions_created_total",
			Help: "Total number of attendance exceptions recorded",
		}, []string{"kind"}), // kind: no_report
		TickDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduler_tick_duration_seconds",
			Help:    "Duration of scheduler tick phases.",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}), // phase: generate, dispatch, detect
	}
}
