// Package relevance ranks the outbound links of a page by how related their
// titles are to a target page.
//
// The target body is reduced once to a Profile, an uppercase word count with
// stop words removed. Each link title is split on whitespace and every token
// found in the profile adds profile[token] * weight(token). The sum is divided
// by the number of non stop word tokens of the title.
//
// With word uniqueness enabled the weight is -log10(rarity) - 1, so rare words
// count more and very common words can count less than nothing. Words with no
// rarity data weigh UnknownWordWeight. Without it every word weighs 1.
//
//	profile, err := relevance.TargetProfile(ctx, src, "Strawberry")
//	scorer := relevance.NewScorer(src, true)
//	top, err := scorer.TopCandidates(ctx, "Starbucks", profile, 5)
package relevance
