package store

import (
	"testing"
	"time"

	"github.com/vaak-ai/voxengine/internal/dialog"
)

func TestMarshalMetadataJSON_RoundTrip(t *testing.T) {
	meta := Metadata{
		OwningInstance: "instance-42",
		Extra:          map[string]string{"region": "ap-south-1"},
	}

	raw, err := marshalMetadataJSON(meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	owner, extra, err := unmarshalMetadataJSON(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if owner != "instance-42" {
		t.Errorf("owner = %q, want instance-42", owner)
	}
	if extra["region"] != "ap-south-1" {
		t.Errorf("extra[region] = %q, want ap-south-1", extra["region"])
	}
}

func TestUnmarshalMetadataJSON_EmptyIsZeroValue(t *testing.T) {
	owner, extra, err := unmarshalMetadataJSON(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner != "" || extra != nil {
		t.Errorf("got owner=%q extra=%v, want zero values", owner, extra)
	}
}

func TestScyllaRow_ToMetadata(t *testing.T) {
	now := time.Now()
	metaJSON, _ := marshalMetadataJSON(Metadata{OwningInstance: "instance-1"})

	row := scyllaRow{
		sessionID:    "sess-1",
		createdAt:    now,
		updatedAt:    now,
		expiresAt:    now.Add(time.Hour),
		language:     "hi",
		stage:        string(dialog.StageDiscovery),
		turnCount:    4,
		memoryJSON:   []byte(`{"facts":[]}`),
		metadataJSON: metaJSON,
	}

	meta, err := row.toMetadata()
	if err != nil {
		t.Fatalf("toMetadata: %v", err)
	}
	if meta.SessionID != "sess-1" || meta.Stage != dialog.StageDiscovery || meta.TurnCount != 4 {
		t.Errorf("got %+v", meta)
	}
	if meta.OwningInstance != "instance-1" {
		t.Errorf("owning instance = %q, want instance-1", meta.OwningInstance)
	}
}
