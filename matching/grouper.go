package matching

import (
	"sort"

	"github.com/dietfit/meal-mapping-services/constants"
	"github.com/dietfit/meal-mapping-services/models/records"
)

// Bucket holds one user's images and traces. Ordering inside a bucket
// is whatever the fetchers produced; the engine imposes its own order.
type Bucket struct {
	UserID string
	Images []*records.Image
	Traces []*records.Trace
}

// Grouping is the output of GroupByUser: per-user buckets plus counts
// of records excluded for data-quality reasons.
type Grouping struct {
	Buckets map[string]*Bucket

	// Skipped counts excluded records by reason. A record with no
	// user ID is never attributed to a synthetic user; a record with
	// an unusable timestamp is never matched with a wrong time. Both
	// are skipped and counted, and the run continues.
	Skipped map[string]int
}

// GroupByUser partitions flat image and trace collections into
// per-user buckets. Records lacking a user ID or a normalized
// timestamp are excluded and counted in Skipped. Users present in
// only one collection still get a bucket; the engine decides what a
// one-sided bucket means.
func GroupByUser(images []*records.Image, traces []*records.Trace) *Grouping {
	grouping := &Grouping{
		Buckets: make(map[string]*Bucket),
		Skipped: make(map[string]int),
	}
	for _, img := range images {
		if img.UserID == "" {
			grouping.Skipped[constants.SkipMissingUserID]++
			continue
		}
		if img.Timestamp.IsZero() {
			grouping.Skipped[constants.SkipInvalidTimestamp]++
			continue
		}
		bucket := grouping.bucketFor(img.UserID)
		bucket.Images = append(bucket.Images, img)
	}
	for _, trace := range traces {
		if trace.UserID == "" {
			grouping.Skipped[constants.SkipMissingUserID]++
			continue
		}
		if trace.Timestamp.IsZero() {
			grouping.Skipped[constants.SkipInvalidTimestamp]++
			continue
		}
		bucket := grouping.bucketFor(trace.UserID)
		bucket.Traces = append(bucket.Traces, trace)
	}
	return grouping
}

func (g *Grouping) bucketFor(userID string) *Bucket {
	bucket := g.Buckets[userID]
	if bucket == nil {
		bucket = &Bucket{UserID: userID}
		g.Buckets[userID] = bucket
	}
	return bucket
}

// UserIDs returns all bucketed user IDs in ascending order, so
// callers can walk the grouping deterministically.
func (g *Grouping) UserIDs() []string {
	ids := make([]string, 0, len(g.Buckets))
	for id := range g.Buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
