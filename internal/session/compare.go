package session

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/philipparndt/goratio/pkg/analysis"
	"github.com/philipparndt/goratio/pkg/series"
)

// Pair is a frame of session A matched with a frame of session B by joint label
type Pair struct {
	Label  string
	FrameA measurement.FrameIndex
	FrameB measurement.FrameIndex
}

// PairByLabel matches frames sharing a joint label. The i-th frame carrying a
// label in A (ascending) pairs with the i-th in B; surplus frames are dropped.
// Pairs are ordered by label, then by occurrence.
func PairByLabel(a, b map[measurement.FrameIndex]string) []Pair {
	framesA := byLabel(a)
	framesB := byLabel(b)

	var labels []string
	for label := range framesA {
		if _, ok := framesB[label]; ok {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	var pairs []Pair
	for _, label := range labels {
		fa, fb := framesA[label], framesB[label]
		n := min(len(fa), len(fb))
		for i := 0; i < n; i++ {
			pairs = append(pairs, Pair{Label: label, FrameA: fa[i], FrameB: fb[i]})
		}
	}
	return pairs
}

func byLabel(labels map[measurement.FrameIndex]string) map[string][]measurement.FrameIndex {
	out := make(map[string][]measurement.FrameIndex)
	for i, label := range labels {
		if label == "" {
			continue
		}
		out[label] = append(out[label], i)
	}
	for _, frames := range out {
		sort.Slice(frames, func(x, y int) bool { return frames[x] < frames[y] })
	}
	return out
}

// ComparisonRow holds the raw click differences of one matched pair
type ComparisonRow struct {
	Label  string
	FrameA measurement.FrameNumber
	FrameB measurement.FrameNumber
	Clicks [analysis.MaxClicks]analysis.ClickDelta
}

// Compare matches two sessions by joint label and measures how far apart the
// raw clicks of each pair are, using the average of both pixel spacings
func Compare(a, b *Snapshot) []ComparisonRow {
	spacing := series.Average(a.Spacing(), b.Spacing())

	var rows []ComparisonRow
	for _, p := range PairByLabel(a.Labels(), b.Labels()) {
		rows = append(rows, ComparisonRow{
			Label:  p.Label,
			FrameA: p.FrameA.Number(),
			FrameB: p.FrameB.Number(),
			Clicks: analysis.CompareClicks(a.RawClicks(p.FrameA), b.RawClicks(p.FrameB), spacing),
		})
	}
	return rows
}

// ComparisonName returns the default output name for comparing two session
// files, e.g. "a_vs_b.csv"
func ComparisonName(pathA, pathB, ext string) string {
	base := func(p string) string {
		return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	}
	return base(pathA) + "_vs_" + base(pathB) + ext
}
