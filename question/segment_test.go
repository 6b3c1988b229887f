package question

import (
	"strings"
	"testing"
)

func TestSegment_RoundTrip(t *testing.T) {
	got := Segment("Q1) a) What is X? [5]\nb) Explain Y. [10]\nQ2) a) Define Z. [3]")
	want := []Record{
		{QuestionNo: 1, SubQuestion: "a", Question: "What is X?", Marks: 5},
		{QuestionNo: 1, SubQuestion: "b", Question: "Explain Y.", Marks: 10},
		{QuestionNo: 2, SubQuestion: "a", Question: "Define Z.", Marks: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSegment_ORStripped(t *testing.T) {
	// WHAT: the OR line between alternatives never reaches question text.
	got := Segment("Q4) a) Question1 [5]\nOR\nb) Question2 [5]")
	if len(got) != 2 {
		t.Fatalf("got %d records: %+v", len(got), got)
	}
	for _, r := range got {
		if strings.Contains(r.Question, "OR") {
			t.Errorf("%s leaks OR: %q", r.Label(), r.Question)
		}
	}
	if got[0].Question != "Question1" || got[1].Question != "Question2" {
		t.Fatalf("texts = %q, %q", got[0].Question, got[1].Question)
	}
}

func TestSegment_ORCaseInsensitive(t *testing.T) {
	got := Segment("q2) a) Describe coupling [4]\n or \nb) Describe cohesion [4]")
	if len(got) != 2 || got[0].QuestionNo != 2 {
		t.Fatalf("records = %+v", got)
	}
	if got[1].Question != "Describe cohesion" {
		t.Fatalf("b = %q", got[1].Question)
	}
}

func TestSegment_MultiLineText(t *testing.T) {
	got := Segment("Q1) a) Explain the waterfall\nmodel with a neat\ndiagram. [8]")
	if len(got) != 1 {
		t.Fatalf("records = %+v", got)
	}
	if got[0].Question != "Explain the waterfall\nmodel with a neat\ndiagram." {
		t.Fatalf("question = %q", got[0].Question)
	}
	if got[0].Marks != 8 {
		t.Fatalf("marks = %d", got[0].Marks)
	}
}

func TestSegment_ScanOrderNotAlphabetical(t *testing.T) {
	got := Segment("Q1) b) Second [2] a) First [3]")
	if len(got) != 2 || got[0].SubQuestion != "b" || got[1].SubQuestion != "a" {
		t.Fatalf("records = %+v", got)
	}
}

func TestSegment_UnmarkedSubRunsOn(t *testing.T) {
	// WHAT: a sub-question without [marks] is not a record of its own.
	got := Segment("Q1) a) No marks here\nb) Has marks [4]\nQ2) a) Trailing without marks")
	if len(got) != 1 {
		t.Fatalf("records = %+v", got)
	}
	if got[0].SubQuestion != "a" || got[0].Marks != 4 {
		t.Fatalf("record = %+v", got[0])
	}
}

func TestSegment_FunctionNotationIsText(t *testing.T) {
	// WHAT: "y)" inside "g(y)" does not open a sub-question.
	got := Segment("Q1) Let g(y) be given.\na) Find the root of g(y) [4]")
	if len(got) != 1 {
		t.Fatalf("records = %+v", got)
	}
	if got[0].SubQuestion != "a" || got[0].Question != "Find the root of g(y)" {
		t.Fatalf("record = %+v", got[0])
	}
}

func TestSegment_OutOfGrammar(t *testing.T) {
	for _, text := range []string{
		"",
		"No questions at all.",
		"1. Define X (5 marks)",
		"Q) a) missing number [2]",
		"Q99999999999999999999) a) overflow [2]",
		"a) orphan sub [2]",
	} {
		if got := Segment(text); len(got) != 0 {
			t.Errorf("Segment(%q) = %+v, want none", text, got)
		}
	}
}

func TestSegment_PreambleIgnored(t *testing.T) {
	got := Segment("Instructions: a) answer all [0]\nQ1) a) Define SDLC. [2]")
	if len(got) != 1 || got[0].Question != "Define SDLC." {
		t.Fatalf("records = %+v", got)
	}
}

func TestSegmentSource_Tags(t *testing.T) {
	got := SegmentSource("Q1) a) Define X. [2]", "2023.pdf")
	if len(got) != 1 || got[0].Source != "2023.pdf" {
		t.Fatalf("records = %+v", got)
	}
}

func TestDuplicates(t *testing.T) {
	records := []Record{
		{QuestionNo: 1, SubQuestion: "a", Source: "p1"},
		{QuestionNo: 1, SubQuestion: "a", Source: "p1"},
		{QuestionNo: 1, SubQuestion: "a", Source: "p2"},
		{QuestionNo: 2, SubQuestion: "b", Source: "p1"},
	}
	dups := Duplicates(records)
	if len(dups) != 1 {
		t.Fatalf("dups = %+v", dups)
	}
	if dups[0] != (Duplicate{Source: "p1", QuestionNo: 1, SubQuestion: "a", Count: 2}) {
		t.Fatalf("dup = %+v", dups[0])
	}
	if Duplicates(nil) != nil {
		t.Fatal("expected nil for no records")
	}
}
