package report

import "sort"

// Aggregation helpers shared by the statistical reports. Buckets are
// ordered sequences of change identifiers; ages map identifiers to a wait
// time in seconds.

// averageAge returns the integer mean age of the bucket, 0 when empty.
func averageAge(ids []string, ages map[string]int64) int64 {
	if len(ids) == 0 {
		return 0
	}
	var total int64
	for _, id := range ids {
		total += ages[id]
	}
	return total / int64(len(ids))
}

// medianAge sorts the bucket's ages ascending and returns the element at
// index n/2 — the upper-middle element for even-sized buckets, not the
// arithmetic median.
func medianAge(ids []string, ages map[string]int64) int64 {
	if len(ids) == 0 {
		return 0
	}
	want := make([]int64, 0, len(ids))
	for _, id := range ids {
		want = append(want, ages[id])
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	return want[len(want)/2]
}

// olderThan counts bucket members older than the given number of days.
func olderThan(ids []string, ages map[string]int64, days int) int {
	cutoff := int64(days) * 24 * 60 * 60
	older := 0
	for _, id := range ids {
		if ages[id] > cutoff {
			older++
		}
	}
	return older
}

// longestWaiting returns the bucket ordered by ascending age, so the
// largest ages sort last; presentation tables surface the oldest first by
// rendering with Reverse set.
func longestWaiting(ids []string, ages map[string]int64) []string {
	want := make([]string, len(ids))
	copy(want, ids)
	sort.SliceStable(want, func(i, j int) bool { return ages[want[i]] < ages[want[j]] })
	return want
}

// reviewRatio returns positive/(positive+negative)*100. A zero denominator
// yields 0 rather than an error; the ratio column then renders "0%".
func reviewRatio(positive, negative int) float64 {
	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive) / float64(total) * 100
}
