package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/pkg/metrics"
	"github.com/galacash/gateway/internal/query"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Sink delivers a cache event to whoever watches the event's scope.
type Sink interface {
	Deliver(ctx context.Context, event query.Event) error
}

// Dispatcher routes cache events to a fixed set of workers using consistent
// hashing on the session scope, so one session sees its events in order.
// It implements query.Observer.
type Dispatcher struct {
	workers []chan query.Event
	sink    Sink
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Sink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan query.Event, numWorkers),
		sink:    sink,
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan query.Event, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands the event to the worker owning its scope. It never blocks
// the request path: when that worker's buffer is full the event is dropped,
// and the UI catches up on its next refetch.
func (d *Dispatcher) Publish(event query.Event) {
	idx := d.shardIndex(event.Scope)
	select {
	case d.workers[idx] <- event:
		metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().
			Str("scope", event.Scope).
			Str("mutation", event.Mutation).
			Int("worker_id", idx).
			Msg("notify queue full, event dropped")
	}
}

// shardIndex maps a scope deterministically to a worker index.
func (d *Dispatcher) shardIndex(scope string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(scope))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan query.Event) {
	depth := metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			if err := d.sink.Deliver(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("scope", event.Scope).
					Str("type", string(event.Type)).
					Int("worker_id", id).
					Msg("event delivery failed")
			}
		}
	}
}
