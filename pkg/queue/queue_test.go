package queue

import (
	"testing"
	"time"
)

func TestNewEventHeader(t *testing.T) {
	hdr := NewEventHeader(TopicPostCreated, WithTraceID("trace-1"), WithProducer("postvault"))

	if hdr.Topic != TopicPostCreated {
		t.Errorf("topic = %q, want %q", hdr.Topic, TopicPostCreated)
	}

	if hdr.TraceID != "trace-1" {
		t.Errorf("trace id = %q, want trace-1", hdr.TraceID)
	}

	if hdr.Producer != "postvault" {
		t.Errorf("producer = %q, want postvault", hdr.Producer)
	}

	if hdr.Version != PayloadVersionV1 {
		t.Errorf("version = %q, want %q", hdr.Version, PayloadVersionV1)
	}

	if hdr.OccurredAt.Location() != time.UTC {
		t.Errorf("occurred_at not UTC: %v", hdr.OccurredAt)
	}
}

func TestWatermillMessageRoundTrip(t *testing.T) {
	payload := PostCreatedPayload{
		Post: PostRef{
			ID:        42,
			Owner:     "alice",
			Name:      "trip notes",
			ObjectKey: "alice/2025/01/abc_notes.txt",
			FileURL:   "http://localhost:9000/postvault/alice/2025/01/abc_notes.txt",
		},
	}

	msg, err := NewWatermillMessage(TopicPostCreated, payload, WithTraceID("trace-2"))
	if err != nil {
		t.Fatalf("NewWatermillMessage: %v", err)
	}

	if msg.UUID == "" {
		t.Error("message uuid is empty")
	}

	if got := msg.Metadata.Get("topic"); got != TopicPostCreated {
		t.Errorf("metadata topic = %q, want %q", got, TopicPostCreated)
	}

	if got := msg.Metadata.Get("trace_id"); got != "trace-2" {
		t.Errorf("metadata trace_id = %q, want trace-2", got)
	}

	env, err := ParsePostCreated(msg)
	if err != nil {
		t.Fatalf("ParsePostCreated: %v", err)
	}

	if env.Header.Topic != TopicPostCreated {
		t.Errorf("decoded header topic = %q, want %q", env.Header.Topic, TopicPostCreated)
	}

	if env.Payload.Post != payload.Post {
		t.Errorf("decoded post = %+v, want %+v", env.Payload.Post, payload.Post)
	}
}

func TestPostTopics(t *testing.T) {
	want := []string{TopicPostCreated, TopicPostUpdated, TopicPostDeleted}
	if len(PostTopics) != len(want) {
		t.Fatalf("PostTopics has %d entries, want %d", len(PostTopics), len(want))
	}

	for i, topic := range want {
		if PostTopics[i] != topic {
			t.Errorf("PostTopics[%d] = %q, want %q", i, PostTopics[i], topic)
		}
	}
}
