// Package report turns a cluster assignment into frequency summaries, a
// bar chart of the largest clusters and a plain-text analysis report.
package report

import (
	"sort"

	"github.com/hazyhaar/paperlens/cluster"
)

// Summary describes one cluster.
type Summary struct {
	ClusterID      int    `json:"cluster_id" yaml:"cluster_id"`
	Size           int    `json:"size" yaml:"size"`
	Representative string `json:"representative" yaml:"representative"`
	Members        []int  `json:"members" yaml:"members"`
}

// Summarize returns the topN largest clusters, ordered by size descending
// with ties broken by cluster id ascending. The representative of a
// cluster is the text of its lowest-index member. topN <= 0 keeps all.
func Summarize(texts []string, assignment cluster.Assignment, topN int) []Summary {
	groups := assignment.Members()
	out := make([]Summary, 0, len(groups))
	for id, members := range groups {
		if len(members) == 0 {
			continue
		}
		s := Summary{ClusterID: id, Size: len(members), Members: members}
		if members[0] < len(texts) {
			s.Representative = texts[members[0]]
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].ClusterID < out[j].ClusterID
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Frequent is the representative question of one cluster.
type Frequent struct {
	ClusterID int    `json:"cluster_id" yaml:"cluster_id"`
	Question  string `json:"question" yaml:"question"`
	Count     int    `json:"count" yaml:"count"`
}

// FrequentQuestions lists the representative of every cluster in the order
// clusters were opened.
func FrequentQuestions(texts []string, assignment cluster.Assignment) []Frequent {
	groups := assignment.Members()
	out := make([]Frequent, 0, len(groups))
	for id, members := range groups {
		if len(members) == 0 || members[0] >= len(texts) {
			continue
		}
		out = append(out, Frequent{ClusterID: id, Question: texts[members[0]], Count: len(members)})
	}
	return out
}
