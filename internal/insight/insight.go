// Package insight produces user-facing wellness summaries from derived,
// bucketed biometric aggregates. Raw readings never leave the engine;
// only per-interval means are retained here, and insights are generated
// solely for users who opted in.
package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// #region types

// Type identifies a wellness insight family.
type Type string

const (
	DigitalFatigue   Type = "digital_fatigue"
	AttentionPattern Type = "attention_pattern"
)

// Bucket is one aggregated interval of derived data.
type Bucket struct {
	Start     time.Time `json:"start"`
	Fatigue   float64   `json:"fatigue_level"`
	Attention float64   `json:"focus_score"`
	Samples   int       `json:"samples"`
}

// Insight is an opt-in, user-facing wellness summary.
type Insight struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
	Type          Type      `json:"type"`
	Summary       string    `json:"summary"`
	DataPoints    []Bucket  `json:"data_points"`
	Visualization Viz       `json:"visualization"`
}

// Viz carries rendering hints for the insight chart.
type Viz struct {
	ChartType string `json:"chart_type"`
	Trend     string `json:"trend,omitempty"`
}

// #endregion types

// #region builder

// bucketSpan is the aggregation interval. Finer granularity would leak
// more than wellness trends need.
const bucketSpan = 15 * time.Minute

// maxBuckets bounds retained history per user.
const maxBuckets = 96 // one day at 15-minute resolution

// Builder accumulates derived samples for one user into time buckets.
// Not safe for concurrent use; the engine serializes per user.
type Builder struct {
	userID  string
	buckets []Bucket
}

// NewBuilder returns an empty builder for the given user.
func NewBuilder(userID string) *Builder {
	return &Builder{userID: userID}
}

// AddSample folds one derived observation into the current bucket.
// fatigue is a normalized strain proxy (blink rate relative to
// baseline), attention the reading's attention score.
func (b *Builder) AddSample(ts time.Time, fatigue, attention float64) {
	start := ts.Truncate(bucketSpan)
	n := len(b.buckets)
	if n == 0 || !b.buckets[n-1].Start.Equal(start) {
		b.buckets = append(b.buckets, Bucket{Start: start})
		if len(b.buckets) > maxBuckets {
			b.buckets = b.buckets[len(b.buckets)-maxBuckets:]
		}
		n = len(b.buckets)
	}

	bk := &b.buckets[n-1]
	bk.Fatigue = runningMean(bk.Fatigue, fatigue, bk.Samples)
	bk.Attention = runningMean(bk.Attention, attention, bk.Samples)
	bk.Samples++
}

// Buckets returns a copy of the retained aggregates, oldest first.
func (b *Builder) Buckets() []Bucket {
	out := make([]Bucket, len(b.buckets))
	copy(out, b.buckets)
	return out
}

// Generate produces an insight of the requested type from the retained
// buckets. Returns false when there is not enough data to say anything.
func (b *Builder) Generate(t Type, now time.Time) (Insight, bool) {
	if len(b.buckets) < 2 {
		return Insight{}, false
	}

	ins := Insight{
		ID:         uuid.New().String(),
		UserID:     b.userID,
		Timestamp:  now,
		Type:       t,
		DataPoints: b.Buckets(),
	}

	switch t {
	case DigitalFatigue:
		trend := trendOf(b.buckets, func(bk Bucket) float64 { return bk.Fatigue })
		ins.Visualization = Viz{ChartType: "line", Trend: trend}
		if trend == "increasing" {
			ins.Summary = "Your strain indicators have been rising across recent sessions; consider a short break."
		} else {
			ins.Summary = "Your strain indicators are steady across recent sessions."
		}
	case AttentionPattern:
		trend := trendOf(b.buckets, func(bk Bucket) float64 { return bk.Attention })
		ins.Visualization = Viz{ChartType: "bar", Trend: trend}
		if trend == "decreasing" {
			ins.Summary = fmt.Sprintf("Your focus tends to fade after about %d minutes of continuous use.", int(bucketSpan.Minutes())*peakIndex(b.buckets))
		} else {
			ins.Summary = "Your focus has held steady across recent sessions."
		}
	default:
		return Insight{}, false
	}

	return ins, true
}

// #endregion builder

// #region helpers

func runningMean(mean, sample float64, n int) float64 {
	return (mean*float64(n) + sample) / float64(n+1)
}

// trendOf classifies the first-to-last delta of a bucket series.
func trendOf(buckets []Bucket, f func(Bucket) float64) string {
	delta := f(buckets[len(buckets)-1]) - f(buckets[0])
	switch {
	case delta > 0.1:
		return "increasing"
	case delta < -0.1:
		return "decreasing"
	default:
		return "stable"
	}
}

// peakIndex returns the 1-based index of the bucket with the highest
// attention, used to phrase how long focus lasts.
func peakIndex(buckets []Bucket) int {
	best, bestIdx := math.Inf(-1), 0
	for i, bk := range buckets {
		if bk.Attention > best {
			best, bestIdx = bk.Attention, i
		}
	}
	return bestIdx + 1
}

// #endregion helpers
