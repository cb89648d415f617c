package chromemdb

import (
	"math"
	"regexp"
	"strings"
)

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

func tokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// lexicalScore is the Ochiai coefficient |Q∩T| / sqrt(|Q|*|T|) between
// the query token set and the text token set, which stays in [0,1] like
// the cosine similarity it is blended with.
func lexicalScore(queryTokens map[string]struct{}, text string) float64 {
	textTokens := tokenSet(text)
	if len(queryTokens) == 0 || len(textTokens) == 0 {
		return 0
	}
	inter := 0
	for t := range textTokens {
		if _, ok := queryTokens[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(queryTokens))*float64(len(textTokens)))
}
