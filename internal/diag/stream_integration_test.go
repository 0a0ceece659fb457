//go:build integration

package diag

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/Talin12/DataSage/internal/render"
)

func setupValkey(t *testing.T) valkey.Client {
	t.Helper()
	addr := os.Getenv("TEST_VALKEY_ADDR")
	if addr == "" {
		t.Fatal("TEST_VALKEY_ADDR not set")
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		t.Skipf("valkey not available: %v", err)
	}
	ctx := context.Background()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		t.Skipf("valkey ping failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStreamSink_ReportAndRecent(t *testing.T) {
	client := setupValkey(t)
	stream := "datasage:test:" + uuid.NewString()
	t.Cleanup(func() {
		client.Do(context.Background(), client.B().Del().Key(stream).Build())
	})

	sink := NewStreamSink(client, stream, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sink.Report(ctx, render.Diagnostic{BlockIndex: i, Stage: render.StageRender, ErrorMessage: "boom"})
	}

	entries, err := sink.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].BlockIndex != 2 || entries[1].BlockIndex != 1 {
		t.Errorf("expected newest first, got %d then %d", entries[0].BlockIndex, entries[1].BlockIndex)
	}
	if entries[0].ID == "" {
		t.Error("entry ID should be set from the stream")
	}
}
