// Package sse streams dataset change notifications as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypeDatasetLoaded      = "dataset.loaded"
	TypeDatasetUnavailable = "dataset.unavailable"
	TypeDatasetSorted      = "dataset.sorted"
	// TypeSummaryUpdated tells clients to refetch counts and reports.
	TypeSummaryUpdated = "summary.updated"
	// TypeDatasetsSnapshot is sent once to a new client with the last known
	// state of every dataset.
	TypeDatasetsSnapshot = "datasets.snapshot"
)

// catalogKinds maps catalog change kinds to event types.
var catalogKinds = map[string]string{
	"loaded":      TypeDatasetLoaded,
	"unavailable": TypeDatasetUnavailable,
	"sorted":      TypeDatasetSorted,
}

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// DatasetChange is the payload of the dataset.* events. Seq counts the
// changes seen for the dataset since the broker started.
type DatasetChange struct {
	Dataset string `json:"dataset"`
	Kind    string `json:"kind"`
	Seq     uint64 `json:"seq"`
}

// Summary is the payload of summary.updated and datasets.snapshot: the last
// change kind of every dataset that has changed.
type Summary struct {
	Datasets map[string]string `json:"datasets"`
}

type datasetEventReq struct {
	kind string
	id   string
}

// Broker fans dataset changes out to SSE clients.
//
// A single goroutine owns the clients and the per-dataset state. Summaries
// go out at most once per throttle window; a change inside the window is
// folded into one trailing summary at the end of it.
type Broker struct {
	summaryMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	datasetCh     chan datasetEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that sends at most one summary.updated event per
// summaryThrottle.
func NewBroker(summaryThrottle time.Duration) *Broker {
	if summaryThrottle <= 0 {
		summaryThrottle = 2 * time.Second
	}

	b := &Broker{
		summaryMin:    summaryThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		datasetCh:     make(chan datasetEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func encode(event Event) ([]byte, bool) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, false
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), true
}

// send never blocks; a client with a full buffer misses the message.
func send(ch chan []byte, raw []byte) {
	select {
	case ch <- raw:
	default:
	}
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	kinds := make(map[string]string)
	seqs := make(map[string]uint64)

	var (
		lastSummary time.Time
		trailing    *time.Timer
		trailingC   <-chan time.Time
	)

	broadcast := func(event Event) {
		raw, ok := encode(event)
		if !ok {
			return
		}
		for ch := range clients {
			send(ch, raw)
		}
	}
	summary := func() Summary {
		return Summary{Datasets: maps.Clone(kinds)}
	}
	publishSummary := func() {
		lastSummary = time.Now()
		broadcast(Event{Type: TypeSummaryUpdated, Data: summary()})
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if len(kinds) > 0 {
				if raw, ok := encode(Event{Type: TypeDatasetsSnapshot, Data: summary()}); ok {
					send(ch, raw)
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.datasetCh:
			typ, ok := catalogKinds[req.kind]
			if !ok {
				continue
			}
			kinds[req.id] = req.kind
			seqs[req.id]++
			broadcast(Event{Type: typ, Data: DatasetChange{Dataset: req.id, Kind: req.kind, Seq: seqs[req.id]}})

			since := time.Since(lastSummary)
			switch {
			case since >= b.summaryMin:
				publishSummary()
			case trailingC == nil:
				trailing = time.NewTimer(b.summaryMin - since)
				trailingC = trailing.C
			}

		case <-trailingC:
			trailingC = nil
			publishSummary()

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishDatasetEvent records a catalog change of dataset id and broadcasts
// it. Kinds other than loaded, unavailable and sorted are ignored.
func (b *Broker) PublishDatasetEvent(kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.datasetCh <- datasetEventReq{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
