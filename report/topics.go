package report

import (
	"strings"

	"github.com/hazyhaar/paperlens/embedding"
)

// TopicModeler labels the main themes of a set of questions.
type TopicModeler interface {
	Topics(texts []string, clusters []Summary) []string
}

// TermTopics labels each of the largest clusters with the highest-weighted
// TF-IDF terms of its members.
type TermTopics struct {
	Clusters int // clusters labelled (default 5)
	Terms    int // terms per label (default 3)
}

// Topics returns one comma-separated label per cluster, in the order of
// clusters. Clusters whose members have no content words are skipped.
func (t TermTopics) Topics(texts []string, clusters []Summary) []string {
	nc, nt := t.Clusters, t.Terms
	if nc <= 0 {
		nc = 5
	}
	if nt <= 0 {
		nt = 3
	}
	if len(clusters) > nc {
		clusters = clusters[:nc]
	}
	if len(clusters) == 0 {
		return nil
	}

	groups := make([][]int, len(clusters))
	for i, c := range clusters {
		groups[i] = c.Members
	}
	terms := embedding.NewTFIDF().TopTerms(texts, groups, nt)

	var out []string
	for _, ts := range terms {
		if len(ts) > 0 {
			out = append(out, strings.Join(ts, ", "))
		}
	}
	return out
}
