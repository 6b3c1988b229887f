package docpipe

import "strings"

// RemoveWatermarks joins the lines of all pages, in page then line order,
// leaving out every line that recurs on at least ratio × text pages.
//
// Matching is on the exact line string: no trimming, no case folding.
// Pages without text neither contribute to the tally nor count as pages.
// Below minPages text pages nothing is treated as a watermark. The
// returned watermark lines are in first-seen order.
func RemoveWatermarks(pages []Page, ratio float64, minPages int) (string, []string) {
	counts := make(map[string]int)
	var order []string
	textPages := 0
	for _, pg := range pages {
		if pg.Text == "" {
			continue
		}
		textPages++
		for _, line := range pg.Lines() {
			if counts[line] == 0 {
				order = append(order, line)
			}
			counts[line]++
		}
	}

	marks := make(map[string]bool)
	var markList []string
	if textPages >= minPages {
		threshold := float64(textPages) * ratio
		for _, line := range order {
			if float64(counts[line]) >= threshold {
				marks[line] = true
				markList = append(markList, line)
			}
		}
	}

	var kept []string
	for _, pg := range pages {
		for _, line := range pg.Lines() {
			if !marks[line] {
				kept = append(kept, line)
			}
		}
	}
	return strings.Join(kept, "\n"), markList
}
