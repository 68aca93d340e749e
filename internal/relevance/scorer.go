package relevance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dshills/wikipath-mcp/pkg/types"
)

// UnknownWordWeight is the uniqueness weight of words with no rarity data
const UnknownWordWeight = 10.0

// LinkSource is the part of a page source the scorer needs
type LinkSource interface {
	Outlinks(ctx context.Context, title string) ([]string, error)
	WordRarity(ctx context.Context, word string) (float64, error)
}

// WeightFunc maps the corpus rarity of a word to its uniqueness weight
type WeightFunc func(rarity float64) float64

// FlatWeight ignores rarity
func FlatWeight(float64) float64 {
	return 1
}

// UniquenessWeight favors rare words. Common words can weigh less than zero.
func UniquenessWeight(rarity float64) float64 {
	if rarity <= 0 {
		return UnknownWordWeight
	}
	return -math.Log10(rarity) - 1
}

// SelectWeight returns the weight function for the word uniqueness setting
func SelectWeight(wordUniqueness bool) WeightFunc {
	if wordUniqueness {
		return UniquenessWeight
	}
	return FlatWeight
}

// Scorer ranks the outbound links of a page against a target profile.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	source         LinkSource
	wordUniqueness bool
	weight         WeightFunc
}

// NewScorer creates a scorer over source
func NewScorer(source LinkSource, wordUniqueness bool) *Scorer {
	return &Scorer{
		source:         source,
		wordUniqueness: wordUniqueness,
		weight:         SelectWeight(wordUniqueness),
	}
}

// TopCandidates returns at most limit outlinks of currentTitle, best first.
// Equal scores are ordered by title.
func (s *Scorer) TopCandidates(ctx context.Context, currentTitle string, profile Profile, limit int) ([]types.Candidate, error) {
	links, err := s.source.Outlinks(ctx, currentTitle)
	if err != nil {
		if types.IsBranchError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("outlinks of %q: %w", currentTitle, err)
		}
		return nil, fmt.Errorf("%w: outlinks of %q: %v", types.ErrPageFetch, currentTitle, err)
	}

	candidates, err := s.ScoreLinks(ctx, links, profile)
	if err != nil {
		return nil, err
	}

	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// ScoreLinks scores every distinct title in links and sorts them best first
func (s *Scorer) ScoreLinks(ctx context.Context, links []string, profile Profile) ([]types.Candidate, error) {
	seen := make(map[string]struct{}, len(links))
	candidates := make([]types.Candidate, 0, len(links))
	for _, title := range links {
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		score, err := s.Score(ctx, title, profile)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, types.Candidate{Title: title, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Title < candidates[j].Title
	})
	return candidates, nil
}

// Score averages the weighted profile counts of the title tokens.
// Every non stop word token counts toward the average; a title made only of
// stop words scores 0.
func (s *Scorer) Score(ctx context.Context, title string, profile Profile) (float64, error) {
	tokens := TitleTokens(title)
	if len(tokens) == 0 {
		return 0, nil
	}

	var total float64
	for _, token := range tokens {
		count, ok := profile[token]
		if !ok {
			continue
		}

		var rarity float64
		if s.wordUniqueness {
			r, err := s.source.WordRarity(ctx, token)
			if err != nil {
				return 0, fmt.Errorf("%w: rarity of %q: %v", types.ErrPageFetch, token, err)
			}
			rarity = r
		}
		total += float64(count) * s.weight(rarity)
	}

	return total / float64(len(tokens)), nil
}
