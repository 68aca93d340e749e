package relevance

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// wordPattern matches runs of letters, digits and underscores in any script
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Profile maps an uppercase word of the target body to its occurrence count
type Profile map[string]int

// WordCount is one entry of a word frequency listing
type WordCount struct {
	Word  string
	Count int
}

// TextSource provides page bodies
type TextSource interface {
	Text(ctx context.Context, title string) (string, error)
}

// BuildProfile counts the words of text, uppercased with stop words removed
func BuildProfile(text string) Profile {
	profile := make(Profile)
	for _, word := range wordPattern.FindAllString(strings.ToUpper(text), -1) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		profile[word]++
	}
	return profile
}

// TargetProfile fetches the text of title and builds its profile.
// Source errors are returned as is so callers can tell a missing target apart.
func TargetProfile(ctx context.Context, source TextSource, title string) (Profile, error) {
	text, err := source.Text(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("target profile for %q: %w", title, err)
	}
	return BuildProfile(text), nil
}

// WordFrequency returns the profile of text by decreasing count, ties by word
func WordFrequency(text string) []WordCount {
	return BuildProfile(text).Sorted()
}

// Sorted lists the profile by decreasing count, ties by word
func (p Profile) Sorted() []WordCount {
	counts := make([]WordCount, 0, len(p))
	for word, count := range p {
		counts = append(counts, WordCount{Word: word, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})
	return counts
}
