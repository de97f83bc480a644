package matching

import (
	"sort"

	"github.com/dietfit/meal-mapping-services/constants"
	"github.com/dietfit/meal-mapping-services/models/records"
	"github.com/dietfit/meal-mapping-services/models/service"
)

// The matching engine assigns each of a user's images to at most one
// strictly-earlier trace, closest preceding trace first. The selection
// is a per-image greedy choice, not a global-optimum reassignment:
// images are processed in ascending timestamp order and each claims
// the best trace still available. That documented behavior, including
// the tie-break rules, is the compatibility contract with downstream
// consumers, so don't swap in a weighted bipartite matching here.

// MatchUser produces the 1-to-1 assignment for one user's bucket.
//
// Rules, per image in ascending (timestamp, id) order:
//   - candidate traces are the still-available ones with a timestamp
//     strictly before the image's (equal timestamps never match);
//   - among candidates, the minimal gap wins; on equal gaps the
//     smaller trace ID wins;
//   - a consumed trace is never reused.
//
// Traces left over become UnusedTraces; images that found no
// candidate become UnmatchedImages.
func MatchUser(bucket *Bucket) *service.UserMatch {
	match := service.NewUserMatch(bucket.UserID)
	match.ImageCount = len(bucket.Images)
	match.TraceCount = len(bucket.Traces)

	images := make([]*records.Image, len(bucket.Images))
	copy(images, bucket.Images)
	sort.Slice(images, func(i, j int) bool {
		if images[i].Timestamp.Equal(images[j].Timestamp) {
			return images[i].ID < images[j].ID
		}
		return images[i].Timestamp.Before(images[j].Timestamp)
	})

	traces := make([]*records.Trace, len(bucket.Traces))
	copy(traces, bucket.Traces)
	sort.Slice(traces, func(i, j int) bool {
		if traces[i].Timestamp.Equal(traces[j].Timestamp) {
			return traces[i].ID < traces[j].ID
		}
		return traces[i].Timestamp.Before(traces[j].Timestamp)
	})

	used := make([]bool, len(traces))
	for _, img := range images {
		bestIndex := -1
		for i, trace := range traces {
			if used[i] {
				continue
			}
			if !trace.Timestamp.Before(img.Timestamp) {
				// Traces are sorted ascending, so nothing past
				// this one can precede the image either.
				break
			}
			if bestIndex < 0 {
				bestIndex = i
				continue
			}
			gap := img.Timestamp.Sub(trace.Timestamp)
			bestGap := img.Timestamp.Sub(traces[bestIndex].Timestamp)
			if gap < bestGap || (gap == bestGap && trace.ID < traces[bestIndex].ID) {
				bestIndex = i
			}
		}
		if bestIndex < 0 {
			match.UnmatchedImages = append(match.UnmatchedImages, img)
			continue
		}
		trace := traces[bestIndex]
		used[bestIndex] = true
		match.MatchedPairs = append(match.MatchedPairs, &service.MatchedPair{
			Image:          img,
			Trace:          trace,
			ImageTimestamp: img.Timestamp,
			TraceTimestamp: trace.Timestamp,
			TimeDifference: img.Timestamp.Sub(trace.Timestamp),
		})
	}
	for i, trace := range traces {
		if !used[i] {
			match.UnusedTraces = append(match.UnusedTraces, trace)
		}
	}
	return match
}

// MatchAll runs every bucket through the engine and splits the
// outcomes: users with records on both sides get a UserMatch, users
// present on one side only are reported as NoCounterpartUser. Both
// result slices come back ordered by user ID.
//
// Per-user matching has no cross-user dependency, so buckets are
// distributed across numWorkers goroutines. Each worker owns the
// buckets it processes, and results are merged only after all workers
// finish, so the summary never sees a partial write.
func MatchAll(grouping *Grouping, numWorkers int) ([]*service.UserMatch, []*service.NoCounterpartUser) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	userIDs := grouping.UserIDs()
	bucketCh := make(chan *Bucket, len(userIDs))
	resultCh := make(chan *service.UserMatch, len(userIDs))
	doneCh := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		go func() {
			for bucket := range bucketCh {
				resultCh <- MatchUser(bucket)
			}
			doneCh <- struct{}{}
		}()
	}

	matched := make([]*service.UserMatch, 0)
	noCounterpart := make([]*service.NoCounterpartUser, 0)
	for _, userID := range userIDs {
		bucket := grouping.Buckets[userID]
		if user := oneSidedUser(bucket); user != nil {
			noCounterpart = append(noCounterpart, user)
			continue
		}
		bucketCh <- bucket
	}
	close(bucketCh)
	for i := 0; i < numWorkers; i++ {
		<-doneCh
	}
	close(resultCh)
	for match := range resultCh {
		matched = append(matched, match)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UserID < matched[j].UserID
	})
	return matched, noCounterpart
}

// oneSidedUser returns a NoCounterpartUser if the bucket has records
// on only one side, else nil. An empty bucket on both sides is
// unreachable: the grouper never creates a bucket without appending
// a record to it.
func oneSidedUser(bucket *Bucket) *service.NoCounterpartUser {
	if len(bucket.Images) == 0 {
		return &service.NoCounterpartUser{
			UserID:      bucket.UserID,
			MissingSide: constants.MissingImages,
			Traces:      bucket.Traces,
			TraceCount:  len(bucket.Traces),
		}
	}
	if len(bucket.Traces) == 0 {
		return &service.NoCounterpartUser{
			UserID:      bucket.UserID,
			MissingSide: constants.MissingTraces,
			Images:      bucket.Images,
			ImageCount:  len(bucket.Images),
		}
	}
	return nil
}
