package quickentry

import "testing"

var (
	testCategories = []string{"Food", "Travel", "Medical", "Shopping", "Other"}
	testUsers      = []string{"Uddeshya", "Megha"}
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"450 uber Megha", 450},
		{"chai for megha", 0},            // no digit run
		{"paid 120 then 80 more", 120},   // leftmost run wins
		{"room1204 cleaning", 1204},      // maximal run, no boundary check
		{"₹300 pizza uddeshya", 300},
		{"", 0},
	}
	for _, tc := range cases {
		got := Parse(tc.in, testCategories, testUsers)
		if got.Amount != tc.want {
			t.Fatalf("Parse(%q).Amount = %d, want %d", tc.in, got.Amount, tc.want)
		}
	}
}

func TestParsePayer(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"450 uber Megha", "Megha"},
		{"450 uber megha", "Megha"}, // case-insensitive
		{"200 Shopping Uddeshya", "Uddeshya"},
		{"120 chai", ""}, // nobody named
		// Substring containment is enough; registry order breaks ties.
		{"uddeshya and megha split 600", "Uddeshya"},
	}
	for _, tc := range cases {
		got := Parse(tc.in, testCategories, testUsers)
		if got.Payer != tc.want {
			t.Fatalf("Parse(%q).Payer = %q, want %q", tc.in, got.Payer, tc.want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// Explicit category name beats the keyword table even when a
		// keyword is also present.
		{"200 travel uber Megha", "Travel"},
		{"200 Shopping Uddeshya", "Shopping"},
		// Keyword table, group priority order.
		{"450 uber Megha", "Travel"},
		{"120 pizza", "Food"},
		{"80 chai", "Food"},
		{"900 medicine megha", "Medical"},
		{"1500 amazon uddeshya", "Shopping"},
		// Terminal fallback.
		{"500 haircut megha", "Other"},
		{"", "Other"},
	}
	for _, tc := range cases {
		got := Parse(tc.in, testCategories, testUsers)
		if got.Category != tc.want {
			t.Fatalf("Parse(%q).Category = %q, want %q", tc.in, got.Category, tc.want)
		}
	}
}

func TestParseCategoryNeverAbsent(t *testing.T) {
	inputs := []string{"", "xyz", "999", "just words", "MEGHA"}
	for _, in := range inputs {
		if got := Parse(in, testCategories, testUsers); got.Category == "" {
			t.Fatalf("Parse(%q).Category is empty", in)
		}
	}
}

func TestParseNoteVerbatim(t *testing.T) {
	in := "450 UBER Megha  " // mixed case and trailing spaces preserved
	if got := Parse(in, testCategories, testUsers); got.Note != in {
		t.Fatalf("Parse(%q).Note = %q", in, got.Note)
	}
}

func TestParseTaughtCategory(t *testing.T) {
	// A freshly registered category is picked up by name alone.
	cats := append([]string{"Gym"}, testCategories...)
	got := Parse("700 gym membership uddeshya", cats, testUsers)
	if got.Category != "Gym" {
		t.Fatalf("Category = %q, want Gym", got.Category)
	}
}

func TestParseScenarioUberMegha(t *testing.T) {
	got := Parse("450 uber Megha", testCategories, testUsers)
	want := Candidate{Amount: 450, Category: "Travel", Payer: "Megha", Note: "450 uber Megha"}
	if got != want {
		t.Fatalf("Parse = %+v, want %+v", got, want)
	}
	if !got.WellFormed() {
		t.Fatalf("candidate should be well-formed")
	}
}

func TestParseScenarioChaiNoPayer(t *testing.T) {
	got := Parse("120 chai", testCategories, testUsers)
	if got.Amount != 120 || got.Category != "Food" || got.Payer != "" {
		t.Fatalf("Parse = %+v", got)
	}
	if got.WellFormed() {
		t.Fatalf("candidate without payer must not be well-formed")
	}
}
