package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var out []SpanRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestFileExporter_WritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Now()
	stub := tracetest.SpanStub{
		Name:      SpanDragSession,
		SpanKind:  trace.SpanKindInternal,
		StartTime: start,
		EndTime:   start.Add(120 * time.Millisecond),
		Status:    sdktrace.Status{Code: codes.Ok},
		Attributes: []attribute.KeyValue{
			attribute.String(AttrDragID, "d-1"),
			attribute.Int(AttrDragMoves, 14),
		},
		Events: []sdktrace.Event{{
			Name:       EventViewportReset,
			Time:       start.Add(time.Millisecond),
			Attributes: []attribute.KeyValue{attribute.Bool(AttrResetAxisX, true)},
		}},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	recs := readRecords(t, path)
	require.Len(t, recs, 1)
	rec := recs[0]
	require.Equal(t, SpanDragSession, rec.Name)
	require.Equal(t, "INTERNAL", rec.Kind)
	require.Equal(t, "OK", rec.Status)
	require.InDelta(t, 120.0, rec.DurationMs, 0.001)
	require.Equal(t, "d-1", rec.Attributes[AttrDragID])
	require.EqualValues(t, 14, rec.Attributes[AttrDragMoves])
	require.Len(t, rec.Events, 1)
	require.Equal(t, true, rec.Events[0].Attributes[AttrResetAxisX])
}

func TestFileExporter_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")

	for i := 0; i < 2; i++ {
		exporter, err := NewFileExporter(path)
		require.NoError(t, err)
		stub := tracetest.SpanStub{Name: SpanAutoScrollRun, Status: sdktrace.Status{Code: codes.Error, Description: "boom"}}
		require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
		require.NoError(t, exporter.Shutdown(context.Background()))
	}

	recs := readRecords(t, path)
	require.Len(t, recs, 2)
	require.Equal(t, "ERROR", recs[1].Status)
	require.Equal(t, "boom", recs[1].StatusMsg)
}

func TestFileExporter_EmptyAndClosed(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exporter.ExportSpans(context.Background(), nil))
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	require.Error(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
}

func TestSpanKindToString(t *testing.T) {
	require.Equal(t, "CLIENT", spanKindToString(trace.SpanKindClient))
	require.Equal(t, "UNSPECIFIED", spanKindToString(trace.SpanKindUnspecified))
}
