package classify

import "testing"

func TestClassifyActivityRepository(t *testing.T) {
	ct := Classify("docs/activity-repository/foo-create.mdx", "Foo Create", []string{"Settings", "Output"})
	if ct.Type != "activity" {
		t.Errorf("Type = %q, want %q", ct.Type, "activity")
	}
	if ct.Subtype != "general-activity" {
		t.Errorf("Subtype = %q, want %q", ct.Subtype, "general-activity")
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Path matches both activity-repository and troubleshooting fragments;
	// the activity rule comes first.
	ct := Classify("docs/activity-repository/troubleshooting-tips.md", "Tips", nil)
	if ct.Type != "activity" {
		t.Errorf("Type = %q, want %q", ct.Type, "activity")
	}
}

func TestClassifyByTitle(t *testing.T) {
	ct := Classify("docs/misc/page.md", "Configuring Webhooks", nil)
	if ct.Type != "configuration" {
		t.Errorf("Type = %q, want %q", ct.Type, "configuration")
	}
}

func TestClassifyDefault(t *testing.T) {
	ct := Classify("docs/other/page.md", "Some Page", nil)
	if ct.Type != "reference" || ct.Subtype != "documentation" {
		t.Errorf("got %q/%q, want reference/documentation", ct.Type, ct.Subtype)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	a := Classify("docs/getting-started/install.md", "Install", []string{"Steps"})
	b := Classify("docs/getting-started/install.md", "Install", []string{"Steps"})
	if a.Type != b.Type || a.Subtype != b.Subtype || a.Category != b.Category {
		t.Errorf("same inputs produced different results: %+v vs %+v", a, b)
	}
}

func TestComplexityTiers(t *testing.T) {
	cases := []struct {
		headers           int
		hasCode, hasImage bool
		want              string
	}{
		{9, false, false, Detailed},
		{6, true, false, Detailed},
		{6, false, false, Moderate}, // >5 but no code
		{4, false, false, Moderate},
		{2, true, false, Moderate},
		{1, false, true, Moderate},
		{3, false, false, Simple},
		{0, false, false, Simple},
	}
	for _, c := range cases {
		got := Complexity(c.headers, c.hasCode, c.hasImage)
		if got != c.want {
			t.Errorf("Complexity(%d, %v, %v) = %q, want %q",
				c.headers, c.hasCode, c.hasImage, got, c.want)
		}
	}
}
