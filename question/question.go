// Package question turns the clean text of an exam paper into question
// records and derives the per-question views the report needs: the
// normalized text used for similarity, a printable listing, a difficulty
// label and question-type counts.
package question

import "fmt"

// Record is one sub-question of a paper.
type Record struct {
	QuestionNo  int    `json:"question_no" yaml:"question_no"`
	SubQuestion string `json:"sub_question" yaml:"sub_question"`
	Question    string `json:"question" yaml:"question"`
	Marks       int    `json:"marks" yaml:"marks"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Label renders the record position as "Q3b".
func (r Record) Label() string {
	return fmt.Sprintf("Q%d%s", r.QuestionNo, r.SubQuestion)
}

// Texts returns the normalized question text of each record, in order.
func Texts(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = Normalize(r.Question)
	}
	return out
}

// Duplicate is a (question number, sub-question) pair seen more than once
// in one source.
type Duplicate struct {
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	QuestionNo  int    `json:"question_no" yaml:"question_no"`
	SubQuestion string `json:"sub_question" yaml:"sub_question"`
	Count       int    `json:"count" yaml:"count"`
}

// Duplicates lists repeated (question number, sub-question) pairs per
// source, in order of first appearance. Records are never dropped; papers
// that restart numbering or repeat a marker are reported, not repaired.
func Duplicates(records []Record) []Duplicate {
	type key struct {
		source string
		no     int
		sub    string
	}
	counts := make(map[key]int)
	var order []key
	for _, r := range records {
		k := key{r.Source, r.QuestionNo, r.SubQuestion}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	var dups []Duplicate
	for _, k := range order {
		if n := counts[k]; n > 1 {
			dups = append(dups, Duplicate{Source: k.source, QuestionNo: k.no, SubQuestion: k.sub, Count: n})
		}
	}
	return dups
}
