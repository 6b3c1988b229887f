package embedding

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"
)

// TFIDF embeds texts as L2-normalized TF-IDF vectors over the vocabulary
// of the texts in one call. Terms are runs of two or more letters or
// digits, lowercased, minus English stop words. IDF is smoothed:
// ln((1+n)/(1+df)) + 1.
type TFIDF struct {
	stop map[string]bool
}

// NewTFIDF returns a TF-IDF embedder with the built-in English stop words.
func NewTFIDF() *TFIDF {
	return &TFIDF{stop: englishStopWords}
}

// Embed returns one vector per text. Vectors of one call share the
// vocabulary, so their dimension is the number of distinct terms.
func (t *TFIDF) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, rows := t.Vectorize(texts)
	out := make([][]float32, len(rows))
	for i, row := range rows {
		v := make([]float32, len(row))
		for j, w := range row {
			v[j] = float32(w)
		}
		out[i] = v
	}
	return out, nil
}

// Vectorize returns the sorted vocabulary and a TF-IDF row per text.
func (t *TFIDF) Vectorize(texts []string) ([]string, [][]float64) {
	docs := make([]map[string]int, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		counts := make(map[string]int)
		for _, tok := range t.Tokenize(text) {
			counts[tok]++
		}
		for tok := range counts {
			df[tok]++
		}
		docs[i] = counts
	}

	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)
	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(texts))
	for i, tok := range vocab {
		index[tok] = i
		idf[i] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	rows := make([][]float64, len(texts))
	for i, counts := range docs {
		row := make([]float64, len(vocab))
		for tok, c := range counts {
			j := index[tok]
			row[j] = float64(c) * idf[j]
		}
		// Summed in vocabulary order so equal texts get bit-equal rows.
		var norm float64
		for _, w := range row {
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		rows[i] = row
	}
	return vocab, rows
}

// Tokenize splits text into lowercase terms, dropping stop words and
// single characters.
func (t *TFIDF) Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 || t.stop[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// TopTerms returns, per group of text indices, the k terms with the highest
// summed TF-IDF weight across the group, heaviest first. Ties sort by term.
func (t *TFIDF) TopTerms(texts []string, groups [][]int, k int) [][]string {
	vocab, rows := t.Vectorize(texts)
	out := make([][]string, len(groups))
	for g, members := range groups {
		weights := make([]float64, len(vocab))
		for _, m := range members {
			if m < 0 || m >= len(rows) {
				continue
			}
			for j, w := range rows[m] {
				weights[j] += w
			}
		}
		order := make([]int, 0, len(vocab))
		for j, w := range weights {
			if w > 0 {
				order = append(order, j)
			}
		}
		sort.SliceStable(order, func(a, b int) bool {
			wa, wb := weights[order[a]], weights[order[b]]
			if wa != wb {
				return wa > wb
			}
			return vocab[order[a]] < vocab[order[b]]
		})
		if len(order) > k {
			order = order[:k]
		}
		terms := make([]string, len(order))
		for i, j := range order {
			terms[i] = vocab[j]
		}
		out[g] = terms
	}
	return out
}
