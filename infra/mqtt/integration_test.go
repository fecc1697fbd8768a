package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/test/util"
)

// TestIntegration publishes through a real Mosquitto broker and reads the
// events back with a plain subscriber.
func TestIntegration(t *testing.T) {
	if !util.DockerAvailable() {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Fatalf("start mosquitto: %v", err)
	}
	defer cleanup()

	received := make(chan Message, 4)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("lift-sub"))
	if tok := sub.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscriber connect: %v", tok.Error())
	}
	defer sub.Disconnect(100)
	tok := sub.Subscribe("lift/events/#", 1, func(_ paho.Client, m paho.Message) {
		var msg Message
		if err := json.Unmarshal(m.Payload(), &msg); err == nil {
			received <- msg
		}
	})
	if tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	pub, err := NewPahoPublisher(Config{Broker: broker, QoS: map[string]byte{"event": 1}}, nil)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Disconnect()
	if err := pub.PublishEvent(ctx, events.Event{Seq: 7, Kind: events.KindPickup, Floor: 3, PersonName: "Bob"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Event.Seq != 7 || msg.Event.PersonName != "Bob" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no message received")
	}
}
