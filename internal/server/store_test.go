package server

import (
	"path/filepath"
	"testing"

	"github.com/amietti/hubline/pkg/wire"
)

func mustOpenStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndRecent(t *testing.T) {
	store := mustOpenStore(t, filepath.Join(t.TempDir(), "messages.db"))

	msgs := []wire.ChatMessage{
		{HubID: "room7", ChannelID: "general", MessageID: "id-1", Message: "first"},
		{HubID: "room7", ChannelID: "general", MessageID: "id-2", Message: "second"},
		{HubID: "room7", ChannelID: "random", MessageID: "id-3", Message: "elsewhere"},
	}
	for _, msg := range msgs {
		if err := store.Save(msg); err != nil {
			t.Fatalf("Failed to save %s: %v", msg.MessageID, err)
		}
	}

	got, err := store.Recent("room7", "general", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}

	// Newest first, scoped to the requested channel.
	want := []wire.ChatMessage{
		{HubID: "room7", ChannelID: "general", MessageID: "id-2", Message: "second"},
		{HubID: "room7", ChannelID: "general", MessageID: "id-1", Message: "first"},
	}
	if len(got) != len(want) {
		t.Fatalf("Recent returned %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Recent()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStore_Recent_Limit(t *testing.T) {
	store := mustOpenStore(t, ":memory:")

	for _, id := range []string{"id-1", "id-2", "id-3"} {
		msg := wire.ChatMessage{HubID: "room7", ChannelID: "general", MessageID: id, Message: id}
		if err := store.Save(msg); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
	}

	got, err := store.Recent("room7", "general", 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent returned %d messages, want 2", len(got))
	}
	if got[0].MessageID != "id-3" || got[1].MessageID != "id-2" {
		t.Errorf("Recent ids = [%s %s], want [id-3 id-2]", got[0].MessageID, got[1].MessageID)
	}
}

func TestStore_Recent_EmptyChannel(t *testing.T) {
	store := mustOpenStore(t, ":memory:")

	got, err := store.Recent("room7", "general", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent returned %d messages, want 0", len(got))
	}
}

func TestStore_Save_DuplicateID(t *testing.T) {
	store := mustOpenStore(t, ":memory:")

	msg := wire.ChatMessage{HubID: "room7", ChannelID: "general", MessageID: "id-1", Message: "first"}
	if err := store.Save(msg); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := store.Save(msg); err == nil {
		t.Error("Expected error on duplicate message id, got nil")
	}
}

func TestOpenStore_BadPath(t *testing.T) {
	if _, err := OpenStore(filepath.Join(t.TempDir(), "missing", "messages.db")); err == nil {
		t.Error("Expected error for an unwritable path, got nil")
	}
}
