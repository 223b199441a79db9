package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"clsh-backend/internal/models"
)

const topReferrerLimit = 5

// directReferrer is the bucket empty/missing referrers collapse into
const directReferrer = "(direct)"

// dayFormat buckets the vote time series per day. Zero-padded ISO dates
// sort lexicographically, so the bucket key doubles as the sort key.
const dayFormat = "2006-01-02"

// AnalyticsService computes aggregate statistics for a clash from its raw
// view and vote rows. The whole per-clash row set is one working set; all
// math happens in memory.
type AnalyticsService struct {
	clashes ClashStore
	votes   VoteStore
	views   ViewStore
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(clashes ClashStore, votes VoteStore, views ViewStore) *AnalyticsService {
	return &AnalyticsService{
		clashes: clashes,
		votes:   votes,
		views:   views,
	}
}

// ComputeAnalytics computes the aggregate for a clash, scoped to its owner
func (s *AnalyticsService) ComputeAnalytics(ctx context.Context, clashID, ownerID string) (*models.Analytics, error) {
	clash, err := s.clashes.GetByIDAndOwner(ctx, clashID, ownerID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	votes, err := s.votes.ListByClash(ctx, clash.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	views, err := s.views.ListByClash(ctx, clash.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}

	return Aggregate(len(clash.Options), votes, views), nil
}

// Aggregate computes the full analytics object from raw rows. Pure: same
// rows in, same aggregate out. Votes whose option index no longer exists
// on the clash (the owner edited options away) count nowhere: they are
// excluded from totals, percentages and the time series alike, so
// sum(option_counts) == total_votes holds unconditionally.
func Aggregate(numOptions int, votes []*models.Vote, views []*models.View) *models.Analytics {
	valid := inRangeVotes(numOptions, votes)
	counts := countByOption(numOptions, valid)

	return &models.Analytics{
		TotalViews:        len(views),
		UniqueViews:       countUniqueFingerprints(views),
		TotalVotes:        len(valid),
		OptionCounts:      counts,
		OptionPercentages: percentages(counts, len(valid)),
		WinningOptions:    winners(counts),
		VotesTimeSeries:   votesPerDay(valid),
		TopReferrers:      topReferrers(views),
	}
}

// inRangeVotes keeps the votes whose option index addresses an existing
// option
func inRangeVotes(numOptions int, votes []*models.Vote) []*models.Vote {
	valid := make([]*models.Vote, 0, len(votes))
	for _, v := range votes {
		if v.OptionIndex >= 0 && v.OptionIndex < numOptions {
			valid = append(valid, v)
		}
	}
	return valid
}

// countByOption maps every valid option index to its vote count; indices
// with zero votes are present with value 0
func countByOption(numOptions int, votes []*models.Vote) map[int]int {
	counts := make(map[int]int, numOptions)
	for i := 0; i < numOptions; i++ {
		counts[i] = 0
	}
	for _, v := range votes {
		if v.OptionIndex >= 0 && v.OptionIndex < numOptions {
			counts[v.OptionIndex]++
		}
	}
	return counts
}

// percentages maps only indices with count > 0 to round(100*count/total).
// Zero-vote indices are omitted, not zero-valued; consumers rely on the
// asymmetry with countByOption.
func percentages(counts map[int]int, total int) map[int]int {
	result := make(map[int]int)
	if total == 0 {
		return result
	}
	for idx, c := range counts {
		if c > 0 {
			result[idx] = int(math.Round(100 * float64(c) / float64(total)))
		}
	}
	return result
}

// winners returns every option index attaining the maximum count, sorted
// ascending, only when that maximum is positive. No votes means an empty
// slice, a tie means all tied indices.
func winners(counts map[int]int) []int {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	result := []int{}
	if max == 0 {
		return result
	}
	for idx, c := range counts {
		if c == max {
			result = append(result, idx)
		}
	}
	sort.Ints(result)
	return result
}

// votesPerDay buckets votes by UTC day, ascending
func votesPerDay(votes []*models.Vote) []models.TimeBucket {
	byDay := make(map[string]int)
	for _, v := range votes {
		byDay[v.CreatedAt.UTC().Format(dayFormat)]++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]models.TimeBucket, 0, len(days))
	for _, day := range days {
		series = append(series, models.TimeBucket{Date: day, Count: byDay[day]})
	}
	return series
}

// topReferrers groups views by referrer, collapsing empty referrers into
// the direct bucket, and returns the top 5 by count. Equal counts keep
// first-appearance order so the result is deterministic.
func topReferrers(views []*models.View) []models.ReferrerCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, v := range views {
		ref := v.Referrer
		if ref == "" {
			ref = directReferrer
		}
		if _, seen := counts[ref]; !seen {
			firstSeen[ref] = order
			order++
		}
		counts[ref]++
	}

	refs := make([]string, 0, len(counts))
	for ref := range counts {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if counts[refs[i]] != counts[refs[j]] {
			return counts[refs[i]] > counts[refs[j]]
		}
		return firstSeen[refs[i]] < firstSeen[refs[j]]
	})

	if len(refs) > topReferrerLimit {
		refs = refs[:topReferrerLimit]
	}
	result := make([]models.ReferrerCount, 0, len(refs))
	for _, ref := range refs {
		result = append(result, models.ReferrerCount{Referrer: ref, Count: counts[ref]})
	}
	return result
}

// countUniqueFingerprints counts distinct device fingerprints among views
func countUniqueFingerprints(views []*models.View) int {
	seen := make(map[string]struct{}, len(views))
	for _, v := range views {
		seen[v.DeviceFingerprint] = struct{}{}
	}
	return len(seen)
}
