package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeDatasetLoaded, Data: map[string]string{"dataset": "fake"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: dataset.loaded") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"dataset":"fake"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishDatasetEvent_SummaryThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDatasetEvent("loaded", "true")
	b.PublishDatasetEvent("sorted", "true")
	b.PublishDatasetEvent("bogus", "true")

	time.Sleep(50 * time.Millisecond)
	summaryCount := 0
	datasetCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), TypeSummaryUpdated) {
				summaryCount++
			} else {
				datasetCount++
			}
		default:
			break loop
		}
	}

	if datasetCount != 2 {
		t.Errorf("dataset events = %d, want 2", datasetCount)
	}
	if summaryCount != 1 {
		t.Errorf("summary events = %d, want 1 (throttled)", summaryCount)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeDatasetSorted, Data: map[string]string{"dataset": "combined"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: dataset.sorted") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// The client buffer holds 64 messages; extra ones must not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: TypeDatasetLoaded, Data: map[string]string{"dataset": "true"}})
	b.PublishDatasetEvent("loaded", "true")
}

func drain(ch chan []byte, wait time.Duration) []string {
	var out []string
	deadline := time.After(wait)
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		case <-deadline:
			return out
		}
	}
}

func TestPublishDatasetEvent_PayloadCarriesKindAndSeq(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDatasetEvent("loaded", "fake")
	b.PublishDatasetEvent("sorted", "fake")

	msgs := drain(ch, 50*time.Millisecond)
	if len(msgs) < 3 {
		t.Fatalf("got %d messages: %q", len(msgs), msgs)
	}
	if !strings.Contains(msgs[0], `"dataset":"fake","kind":"loaded","seq":1`) {
		t.Errorf("first change = %q", msgs[0])
	}
	if !strings.Contains(msgs[1], `"datasets":{"fake":"loaded"}`) {
		t.Errorf("summary = %q", msgs[1])
	}
	if !strings.Contains(msgs[2], `"dataset":"fake","kind":"sorted","seq":2`) {
		t.Errorf("second change = %q", msgs[2])
	}
}

func TestPublishDatasetEvent_TrailingSummary(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDatasetEvent("loaded", "true")
	b.PublishDatasetEvent("unavailable", "combined")
	b.PublishDatasetEvent("sorted", "true")

	var summaries []string
	for _, msg := range drain(ch, 400*time.Millisecond) {
		if strings.Contains(msg, TypeSummaryUpdated) {
			summaries = append(summaries, msg)
		}
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2: %q", len(summaries), summaries)
	}
	if !strings.Contains(summaries[1], `"datasets":{"combined":"unavailable","true":"sorted"}`) {
		t.Errorf("trailing summary = %q", summaries[1])
	}
}

func TestSubscribe_ReceivesDatasetSnapshot(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	first := b.Subscribe()
	if msgs := drain(first, 20*time.Millisecond); len(msgs) != 0 {
		t.Errorf("snapshot sent before any change: %q", msgs)
	}
	b.PublishDatasetEvent("sorted", "fake")
	drain(first, 20*time.Millisecond)
	b.Unsubscribe(first)

	late := b.Subscribe()
	defer b.Unsubscribe(late)
	msgs := drain(late, 50*time.Millisecond)
	if len(msgs) != 1 {
		t.Fatalf("late client got %q", msgs)
	}
	if !strings.Contains(msgs[0], "event: datasets.snapshot") || !strings.Contains(msgs[0], `"fake":"sorted"`) {
		t.Errorf("snapshot = %q", msgs[0])
	}
}
