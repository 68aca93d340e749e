package relevance

import "strings"

// stopWords are ignored both in link titles and in the target body.
// Entries are uppercase; tokens are uppercased before lookup.
var stopWords = map[string]struct{}{
	"A": {}, "ABOUT": {}, "ALSO": {}, "AN": {}, "AND": {}, "ARE": {}, "AS": {}, "AT": {},
	"BE": {}, "BEEN": {}, "BEING": {}, "BUT": {}, "BY": {},
	"CAN": {}, "COULD": {},
	"DID": {}, "DO": {}, "DOES": {}, "DOWN": {},
	"FOR": {}, "FROM": {},
	"HAD": {}, "HAS": {}, "HAVE": {},
	"IN": {}, "IS": {}, "IT": {}, "ITS": {},
	"MANY": {}, "MAY": {}, "MIGHT": {}, "MUCH": {}, "MUST": {},
	"OF": {}, "ON": {}, "OR": {}, "OUGHT": {}, "OUT": {},
	"S": {}, "SHALL": {}, "SHOULD": {}, "SUCH": {},
	"THAN": {}, "THAT": {}, "THE": {}, "THIS": {}, "TO": {},
	"UP": {},
	"WAS": {}, "WERE": {}, "WHAT": {}, "WHEN": {}, "WHICH": {}, "WHO": {}, "WILL": {}, "WITH": {}, "WOULD": {},
}

// IsStopWord reports whether word is ignored for scoring, regardless of case
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToUpper(word)]
	return ok
}

// TitleTokens splits a link title on whitespace, uppercases it and drops stop words
func TitleTokens(title string) []string {
	fields := strings.Fields(strings.ToUpper(title))
	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
