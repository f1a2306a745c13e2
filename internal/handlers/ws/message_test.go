package ws

import (
	"bytes"
	"testing"
)

func TestDeserializeLocationMessage(t *testing.T) {
	raw := []byte(`{"type":"location","payload":{"latitude":48.2082,"longitude":16.3738}}`)

	msg, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	loc, ok := msg.(*MessageLocation)
	if !ok {
		t.Fatalf("Expected *MessageLocation, got %T", msg)
	}
	if loc.Latitude != 48.2082 || loc.Longitude != 16.3738 {
		t.Errorf("Unexpected coordinates: %v, %v", loc.Latitude, loc.Longitude)
	}
}

func TestDeserializeUnknownType(t *testing.T) {
	raw := []byte(`{"type":"teleport","payload":{}}`)

	if _, err := Deserialize(raw); err == nil {
		t.Error("Expected error for unknown message type")
	}
}

func TestDeserializeInvalidJSON(t *testing.T) {
	if _, err := Deserialize([]byte(`not json`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"location", &MessageLocation{Latitude: 1.5, Longitude: -2.5}},
		{"sync", &MessageSync{}},
		{"ping", &MessagePing{}},
		{"pong", &MessagePong{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Serialize(tt.msg)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}

			decoded, err := Deserialize(data)
			if err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}
			if decoded.GetType() != tt.msg.GetType() {
				t.Errorf("Type changed in round trip: got %s, want %s", decoded.GetType(), tt.msg.GetType())
			}
		})
	}
}

func TestTypeRegistryCoversAllMessages(t *testing.T) {
	registry := GetTypeRegistry()
	for _, msgType := range []string{"location", "sync", "ping", "pong"} {
		if _, ok := registry[msgType]; !ok {
			t.Errorf("Type %q not registered", msgType)
		}
	}
}

func TestGzipRoundTrip(t *testing.T) {
	hub := &Hub{}
	original := bytes.Repeat([]byte(`{"type":"location_result"}`), 40)

	compressed, err := hub.compressData(original)
	if err != nil {
		t.Fatalf("compressData failed: %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("Expected compression to shrink %d bytes, got %d", len(original), len(compressed))
	}

	restored, err := DecompressMessage(compressed)
	if err != nil {
		t.Fatalf("DecompressMessage failed: %v", err)
	}
	if !bytes.Equal(restored, original) {
		t.Error("Round trip changed the payload")
	}
}
