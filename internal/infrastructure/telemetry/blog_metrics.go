package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("NewBlogMetrics: meter cannot be nil")

// ContentStats is a point-in-time size of the blog
type ContentStats struct {
	Posts  int64
	Groups int64
}

// ContentStatsProvider reports the current content size for periodic gauges.
type ContentStatsProvider interface {
	ContentStats(ctx context.Context) (ContentStats, error)
}

// BlogMetricsConfig holds configuration for blog metrics.
type BlogMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // default 1 minute
	StatsProvider   ContentStatsProvider
}

// BlogMetrics counts publishing activity and samples content size.
type BlogMetrics struct {
	logger *zap.Logger

	postsCreated     *Counter
	postsEdited      *Counter
	editsDenied      *Counter
	validationFailed *Counter
	feedPagesServed  *Counter

	postsTotal  *Gauge
	groupsTotal *Gauge

	statsProvider   ContentStatsProvider
	collectInterval time.Duration
	stopChan        chan struct{}
	stopOnce        sync.Once
	collectOnce     sync.Once
}

// NewBlogMetrics creates the blog instruments on cfg.Meter.
func NewBlogMetrics(cfg BlogMetricsConfig) (*BlogMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = time.Minute
	}

	bm := &BlogMetrics{
		logger:          logger,
		statsProvider:   cfg.StatsProvider,
		collectInterval: interval,
		stopChan:        make(chan struct{}),
	}

	var err error
	if bm.postsCreated, err = NewCounter(cfg.Meter, "yatube_posts_created_total", "Posts published", "{posts}"); err != nil {
		return nil, err
	}
	if bm.postsEdited, err = NewCounter(cfg.Meter, "yatube_posts_edited_total", "Posts edited by their author", "{posts}"); err != nil {
		return nil, err
	}
	if bm.editsDenied, err = NewCounter(cfg.Meter, "yatube_post_edits_denied_total", "Edit attempts refused", "{requests}"); err != nil {
		return nil, err
	}
	if bm.validationFailed, err = NewCounter(cfg.Meter, "yatube_post_form_invalid_total", "Post form submissions rejected by validation", "{errors}"); err != nil {
		return nil, err
	}
	if bm.feedPagesServed, err = NewCounter(cfg.Meter, "yatube_feed_pages_served_total", "Feed pages rendered", "{pages}"); err != nil {
		return nil, err
	}
	if bm.postsTotal, err = NewGauge(cfg.Meter, "yatube_posts", "Posts currently stored", "{posts}"); err != nil {
		return nil, err
	}
	if bm.groupsTotal, err = NewGauge(cfg.Meter, "yatube_groups", "Groups currently stored", "{groups}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// PostCreated counts a published post.
func (bm *BlogMetrics) PostCreated(ctx context.Context) {
	bm.postsCreated.Inc(ctx)
}

// PostEdited counts a saved edit.
func (bm *BlogMetrics) PostEdited(ctx context.Context) {
	bm.postsEdited.Inc(ctx)
}

// EditDenied counts a refused edit; reason is "not_author" or "not_found".
func (bm *BlogMetrics) EditDenied(ctx context.Context, reason string) {
	bm.editsDenied.Inc(ctx, AttrReason.String(reason))
}

// ValidationFailed counts one failing form field.
func (bm *BlogMetrics) ValidationFailed(ctx context.Context, field string) {
	bm.validationFailed.Inc(ctx, AttrField.String(field))
}

// FeedServed counts a rendered feed page; feed is "index", "group" or "profile".
func (bm *BlogMetrics) FeedServed(ctx context.Context, feed string) {
	bm.feedPagesServed.Inc(ctx, AttrFeed.String(feed))
}

// StartPeriodicCollection samples content size every collect interval until
// Stop is called or ctx ends. It does nothing without a stats provider.
func (bm *BlogMetrics) StartPeriodicCollection(ctx context.Context) {
	if bm.statsProvider == nil {
		return
	}
	bm.collectOnce.Do(func() {
		go bm.runPeriodicCollection(ctx)
	})
}

func (bm *BlogMetrics) runPeriodicCollection(ctx context.Context) {
	ticker := time.NewTicker(bm.collectInterval)
	defer ticker.Stop()

	bm.collect(ctx)
	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collect(ctx)
		}
	}
}

func (bm *BlogMetrics) collect(ctx context.Context) {
	stats, err := bm.statsProvider.ContentStats(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect content stats", zap.Error(err))
		return
	}
	bm.postsTotal.Record(ctx, stats.Posts)
	bm.groupsTotal.Record(ctx, stats.Groups)
}

// Stop stops the periodic collection.
func (bm *BlogMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
