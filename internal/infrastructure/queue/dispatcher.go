package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/sandia/users-manager/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

var (
	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "users",
			Name:      "audit_queue_depth",
			Help:      "Current number of audit entries pending in each dispatcher worker channel.",
		},
		[]string{"worker_id"},
	)
	droppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "users",
			Name:      "audit_dropped_total",
			Help:      "Total number of audit entries dropped because the worker buffer was full.",
		},
	)
	failuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "users",
			Name:      "audit_failures_total",
			Help:      "Total number of audit entries that failed to persist.",
		},
	)
)

// Dispatcher routes audit entries to a fixed set of workers using
// consistent hashing on the profile id, so all entries for one profile are
// persisted in the order they were enqueued. Audit persistence is best
// effort: failures are logged and counted, never propagated to the
// operation that produced the entry.
type Dispatcher struct {
	workers  []chan ports.AuditEntry
	recorder ports.AuditRecorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.AuditRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.AuditEntry, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an entry to the worker responsible for its profile id.
// The call never blocks: when the worker buffer is full (or its worker has
// already stopped), the entry is dropped and counted.
func (d *Dispatcher) Enqueue(entry ports.AuditEntry) {
	i := d.shardIndex(entry.ProfileID)
	select {
	case d.workers[i] <- entry:
		queueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	default:
		droppedTotal.Inc()
		d.log.Warn().
			Str("profile_id", entry.ProfileID).
			Str("action", entry.Action).
			Msg("audit queue full, entry dropped")
	}
}

// shardIndex maps a profile id deterministically to a worker index.
func (d *Dispatcher) shardIndex(profileID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(profileID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEntry) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			queueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			if err := d.recorder.Record(ctx, entry); err != nil {
				failuresTotal.Inc()
				d.log.Error().Err(err).
					Str("profile_id", entry.ProfileID).
					Str("action", entry.Action).
					Int("worker_id", id).
					Msg("audit entry persistence failed")
			}
		}
	}
}
