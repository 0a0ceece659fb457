package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/valkey-io/valkey-go"

	"github.com/Talin12/DataSage/internal/render"
)

const (
	DefaultStream = "datasage:render:diagnostics"
	DefaultMaxLen = 1000
)

// Entry is a diagnostic as stored on the stream.
type Entry struct {
	ID         string    `json:"id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
	render.Diagnostic
}

// StreamSink appends diagnostics to a capped Valkey stream. Failures to
// publish are logged and never reach the render pipeline.
type StreamSink struct {
	client valkey.Client
	stream string
	maxLen int64
	logger *slog.Logger
	now    func() time.Time
}

func NewStreamSink(client valkey.Client, stream string, maxLen int64, logger *slog.Logger) *StreamSink {
	if stream == "" {
		stream = DefaultStream
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &StreamSink{client: client, stream: stream, maxLen: maxLen, logger: logger, now: time.Now}
}

func (s *StreamSink) Report(ctx context.Context, d render.Diagnostic) {
	entry := Entry{
		RequestID:  chimw.GetReqID(ctx),
		ReportedAt: s.now().UTC(),
		Diagnostic: d,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("marshal diagnostic", slog.String("error", err.Error()))
		return
	}

	resp := s.client.Do(ctx, s.client.B().Xadd().
		Key(s.stream).Maxlen().Almost().Threshold(strconv.FormatInt(s.maxLen, 10)).
		Id("*").
		FieldValue().FieldValue("data", string(data)).
		Build())
	if err := resp.Error(); err != nil {
		s.logger.Warn("publish diagnostic",
			slog.String("stream", s.stream),
			slog.String("error", err.Error()),
		)
	}
}

// Recent returns up to limit entries, newest first.
func (s *StreamSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	resp := s.client.Do(ctx, s.client.B().Xrevrange().
		Key(s.stream).End("+").Start("-").Count(int64(limit)).
		Build())
	items, err := resp.AsXRange()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("xrevrange %s: %w", s.stream, err)
	}
	return decodeEntries(items, s.logger), nil
}

func decodeEntries(items []valkey.XRangeEntry, logger *slog.Logger) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		raw, ok := item.FieldValues["data"]
		if !ok {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			logger.Warn("skip malformed diagnostic",
				slog.String("id", item.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		e.ID = item.ID
		entries = append(entries, e)
	}
	return entries
}
