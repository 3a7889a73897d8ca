package publishers

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub/pstest"
)

func TestGCPPubSubPublisherDeliversToEmulator(t *testing.T) {
	srv := pstest.NewServer()
	defer srv.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", srv.Addr)

	ctx := context.Background()
	pub, err := newGCPPubSubPublisher(ctx, PublisherConfig{
		ID:        "lake",
		Type:      TypeGCPPubSub,
		GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "proj", Topic: "tcpwave-events"},
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubPublisher: %v", err)
	}
	defer pub.Close()

	g := pub.(*gcpPubSubPublisher)
	if _, err := g.client.CreateTopic(ctx, "tcpwave-events"); err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	evt := Event{Operation: "get_object_details_by_ipaddress", Status: "Success"}
	if err := pub.Publish(ctx, evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := srv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	var body Event
	if err := json.Unmarshal(msgs[0].Data, &body); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if body.Operation != evt.Operation {
		t.Fatalf("unexpected body %#v", body)
	}
	if msgs[0].Attributes["status"] != "Success" {
		t.Fatalf("unexpected attributes %#v", msgs[0].Attributes)
	}
}
