package question

import (
	"regexp"
	"strings"
)

// Difficulty is a coarse label derived from question length.
type Difficulty string

const (
	Basic        Difficulty = "Basic"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// EstimateDifficulty labels a set of questions by their mean word count:
// above 50 is Advanced, above 25 Intermediate, anything else Basic.
func EstimateDifficulty(texts []string) Difficulty {
	if len(texts) == 0 {
		return Basic
	}
	words := 0
	for _, t := range texts {
		words += len(strings.Fields(t))
	}
	switch avg := float64(words) / float64(len(texts)); {
	case avg > 50:
		return Advanced
	case avg > 25:
		return Intermediate
	default:
		return Basic
	}
}

// TypeCount is the number of questions matching one category.
type TypeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

type category struct {
	name    string
	pattern *regexp.Regexp
}

// Patterns are unanchored substrings, so "explain" also counts
// "explanation" and "name" counts "rename".
var categories = []category{
	{"Definition", regexp.MustCompile(`(?i)define|what is|explain`)},
	{"Calculation", regexp.MustCompile(`(?i)calculate|solve|compute|formula`)},
	{"Problem Solving", regexp.MustCompile(`(?i)prove|demonstrate|solve the problem`)},
	{"Comparison", regexp.MustCompile(`(?i)compare|contrast|difference between`)},
	{"Enumeration", regexp.MustCompile(`(?i)list|name|give examples`)},
}

// Categories returns the category names in report order.
func Categories() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.name
	}
	return names
}

// Categorize counts questions per category. A question can fall in
// several categories or none; every category is present in the result.
func Categorize(texts []string) []TypeCount {
	counts := make([]TypeCount, len(categories))
	for i, c := range categories {
		counts[i].Type = c.name
		for _, t := range texts {
			if c.pattern.MatchString(t) {
				counts[i].Count++
			}
		}
	}
	return counts
}
