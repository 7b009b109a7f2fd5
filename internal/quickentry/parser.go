// Package quickentry implements the natural-language quick-entry flow:
// a heuristic parser that turns a short phrase like "450 uber Megha" into a
// candidate expense, and a confirm-before-save session around it.
package quickentry

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackCategory is assigned when neither a registered category name nor a
// keyword-table entry matches the input.
const FallbackCategory = "Other"

// Candidate is an unconfirmed expense produced by Parse. Amount is whole
// rupees; zero means no amount was found in the text. An empty Payer means
// no known user matched. Note always carries the original input verbatim.
type Candidate struct {
	Amount   int64
	Category string
	Payer    string
	Note     string
}

// WellFormed reports whether the candidate can be offered for confirmation:
// both the amount and the payer must be present.
func (c Candidate) WellFormed() bool {
	return c.Amount > 0 && c.Payer != ""
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// keywordGroups backs the second category pass. Groups are tested in this
// order and the first hit wins.
var keywordGroups = []struct {
	category string
	words    []string
}{
	{"Travel", []string{"uber", "ola", "cab", "bus", "train"}},
	{"Food", []string{"food", "pizza", "swiggy", "zomato", "chai"}},
	{"Medical", []string{"medicine", "doctor", "hospital"}},
	{"Shopping", []string{"amazon", "flipkart", "shopping"}},
}

// Parse interprets free text as a candidate expense. It never fails: missing
// pieces are left absent and the category always resolves, in the worst case
// to FallbackCategory.
//
// Matching is case-insensitive and purely substring-based, with no token
// boundary checks. A user name hiding inside another word still matches;
// registry order is the tie-break.
func Parse(text string, categories, users []string) Candidate {
	lower := strings.ToLower(text)
	cand := Candidate{Note: text}

	// Leftmost maximal digit run is the amount. Only plain integers are
	// recognised, no decimals or currency symbols.
	if run := digitRun.FindString(lower); run != "" {
		if amt, err := strconv.ParseInt(run, 10, 64); err == nil {
			cand.Amount = amt
		}
	}

	for _, u := range users {
		if strings.Contains(lower, strings.ToLower(u)) {
			cand.Payer = u
			break
		}
	}

	cand.Category = matchCategory(lower, categories)
	return cand
}

func matchCategory(lower string, categories []string) string {
	// Pass 1: an explicitly registered category named in the text wins over
	// any keyword match. This is how users teach the parser new categories.
	for _, c := range categories {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	// Pass 2: the fixed keyword table.
	for _, g := range keywordGroups {
		for _, w := range g.words {
			if strings.Contains(lower, w) {
				return g.category
			}
		}
	}
	return FallbackCategory
}
