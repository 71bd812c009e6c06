package bus_test

import (
	"testing"
	"time"

	"velora/internal/bus"
)

func TestPublishReachesSubscriber(t *testing.T) {
	b := bus.New()
	ch, cancel := b.Subscribe(bus.TopicLogin)
	defer cancel()

	b.Publish(bus.Event{Topic: bus.TopicLogin, SessionID: "s1"})

	select {
	case ev := <-ch:
		if ev.SessionID != "s1" {
			t.Fatalf("wrong session: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	b := bus.New()
	ch, cancel := b.Subscribe(bus.TopicLogout)
	defer cancel()

	b.Publish(bus.Event{Topic: bus.TopicLogin, SessionID: "s1"})

	select {
	case ev := <-ch:
		t.Fatalf("unexpected delivery: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := bus.New()
	_, cancel := b.Subscribe(bus.TopicOrderPlaced)
	defer cancel()

	// Way past the buffer; a full subscriber must not wedge the publisher.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(bus.Event{Topic: bus.TopicOrderPlaced})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := bus.New()
	ch, cancel := b.Subscribe(bus.TopicLogin)
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
}
