package skills

import (
	"strings"

	"golang.org/x/text/cases"
)

// Dictionary is the fixed list of keywords looked for in uploaded documents
var Dictionary = []string{
	"python",
	"javascript",
	"typescript",
	"react",
	"next.js",
	"node",
	"express",
	"django",
	"flask",
	"java",
	"c#",
	"c++",
	"sql",
	"mysql",
	"postgresql",
	"mongodb",
	"aws",
	"docker",
	"kubernetes",
	"figma",
}

// MatchKeywords returns the dictionary entries contained in text, in dictionary order.
// Matching is by case-insensitive substring, so "JavaScript" also matches "java".
func MatchKeywords(text string) []string {
	if text == "" {
		return nil
	}
	// a Caser is stateful, so one per call
	folder := cases.Fold()
	folded := folder.String(text)

	var found []string
	for _, keyword := range Dictionary {
		if strings.Contains(folded, folder.String(keyword)) {
			found = append(found, keyword)
		}
	}
	return found
}
