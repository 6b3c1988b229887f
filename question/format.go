package question

import (
	"fmt"
	"sort"
	"strings"
)

// Format renders records as a paper listing: questions by ascending
// number, sub-questions by letter, one blank line after each question.
//
//	Q1) a) What is X? [5]
//	   b) Explain Y. [10]
func Format(records []Record) string {
	grouped := make(map[int][]Record)
	var numbers []int
	for _, r := range records {
		if _, ok := grouped[r.QuestionNo]; !ok {
			numbers = append(numbers, r.QuestionNo)
		}
		grouped[r.QuestionNo] = append(grouped[r.QuestionNo], r)
	}
	sort.Ints(numbers)

	var b strings.Builder
	for _, no := range numbers {
		subs := grouped[no]
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].SubQuestion < subs[j].SubQuestion })

		fmt.Fprintf(&b, "Q%d) ", no)
		for i, sub := range subs {
			if i > 0 {
				b.WriteString("   ")
			}
			fmt.Fprintf(&b, "%s) %s [%d]\n", sub.SubQuestion, Normalize(sub.Question), sub.Marks)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
