package telemetry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumValue(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)

	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

type fakeStats struct {
	calls atomic.Int32
	stats ContentStats
	err   error
}

func (f *fakeStats) ContentStats(context.Context) (ContentStats, error) {
	f.calls.Add(1)
	return f.stats, f.err
}

func TestNewBlogMetrics_RequiresMeter(t *testing.T) {
	_, err := NewBlogMetrics(BlogMetricsConfig{})
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestBlogMetrics_Counters(t *testing.T) {
	reader, provider := newTestMeter(t)
	bm, err := NewBlogMetrics(BlogMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	ctx := context.Background()
	bm.PostCreated(ctx)
	bm.PostCreated(ctx)
	bm.PostEdited(ctx)
	bm.EditDenied(ctx, "not_author")
	bm.ValidationFailed(ctx, "text")
	bm.ValidationFailed(ctx, "group")
	bm.ValidationFailed(ctx, "text")
	bm.FeedServed(ctx, "index")

	metrics := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumValue(t, metrics["yatube_posts_created_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["yatube_posts_edited_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["yatube_post_edits_denied_total"], AttrReason.String("not_author")))
	assert.Equal(t, int64(2), sumValue(t, metrics["yatube_post_form_invalid_total"], AttrField.String("text")))
	assert.Equal(t, int64(1), sumValue(t, metrics["yatube_post_form_invalid_total"], AttrField.String("group")))
	assert.Equal(t, int64(1), sumValue(t, metrics["yatube_feed_pages_served_total"], AttrFeed.String("index")))
}

func TestBlogMetrics_PeriodicCollection(t *testing.T) {
	reader, provider := newTestMeter(t)
	stats := &fakeStats{stats: ContentStats{Posts: 13, Groups: 2}}
	bm, err := NewBlogMetrics(BlogMetricsConfig{
		Meter:           provider.Meter("test"),
		Logger:          zap.NewNop(),
		CollectInterval: 10 * time.Millisecond,
		StatsProvider:   stats,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bm.StartPeriodicCollection(ctx)
	bm.StartPeriodicCollection(ctx)
	defer bm.Stop()

	require.Eventually(t, func() bool { return stats.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	metrics := collectMetrics(t, reader)
	gauge, ok := metrics["yatube_posts"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(13), gauge.DataPoints[0].Value)

	groups, ok := metrics["yatube_groups"].(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Equal(t, int64(2), groups.DataPoints[0].Value)

	bm.Stop()
	bm.Stop()
}

func TestBlogMetrics_CollectionErrorKeepsRunning(t *testing.T) {
	_, provider := newTestMeter(t)
	stats := &fakeStats{err: errors.New("database is down")}
	bm, err := NewBlogMetrics(BlogMetricsConfig{
		Meter:           provider.Meter("test"),
		CollectInterval: 5 * time.Millisecond,
		StatsProvider:   stats,
	})
	require.NoError(t, err)

	bm.StartPeriodicCollection(context.Background())
	defer bm.Stop()

	require.Eventually(t, func() bool { return stats.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestBlogMetrics_NoProviderDoesNotStart(t *testing.T) {
	_, provider := newTestMeter(t)
	bm, err := NewBlogMetrics(BlogMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	bm.StartPeriodicCollection(context.Background())
	bm.Stop()
}

func TestMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}
