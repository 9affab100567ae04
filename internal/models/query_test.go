package models

import "testing"

func TestParseFamily(t *testing.T) {
	cases := []struct {
		in   string
		want QueryFamily
		ok   bool
	}{
		{"basic", FamilyBasic, true},
		{"Basic", FamilyBasic, true},
		{"keybert", FamilyKeybert, true},
		{"keyBERT", FamilyKeybert, true},
		{"reason", FamilyReason, true},
		{"reasoning", FamilyReason, true},
		{"Reasoning", FamilyReason, true},
		{"martian", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, err := ParseFamily(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseFamily(%q) = %q, %v; want %q", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseFamily(%q) should fail", c.in)
		}
	}
}

func TestParseVariant(t *testing.T) {
	if v, err := ParseVariant("Extended"); err != nil || v != VariantExtended {
		t.Errorf("ParseVariant(Extended) = %q, %v", v, err)
	}
	if v, err := ParseVariant("baseline"); err != nil || v != VariantBaseline {
		t.Errorf("ParseVariant(baseline) = %q, %v", v, err)
	}
	if _, err := ParseVariant("middle"); err == nil {
		t.Error("ParseVariant(middle) should fail")
	}
}

func TestFamiliesOrder(t *testing.T) {
	fams := Families()
	want := []QueryFamily{FamilyBasic, FamilyKeybert, FamilyReason}
	if len(fams) != len(want) {
		t.Fatalf("expected %d families, got %d", len(want), len(fams))
	}
	for i := range want {
		if fams[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, fams[i], want[i])
		}
	}
}

func TestQueryValidate(t *testing.T) {
	valid := Query{BugID: "bug1", Family: FamilyBasic, Variant: VariantBaseline, Text: "crash"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid query rejected: %v", err)
	}

	cases := []struct {
		name string
		q    Query
	}{
		{"empty bug id", Query{Family: FamilyBasic, Variant: VariantBaseline, Text: "x"}},
		{"blank text", Query{BugID: "b", Family: FamilyBasic, Variant: VariantBaseline, Text: "  \n"}},
		{"bad family", Query{BugID: "b", Family: "martian", Variant: VariantBaseline, Text: "x"}},
		{"bad variant", Query{BugID: "b", Family: FamilyBasic, Variant: "middle", Text: "x"}},
	}
	for _, c := range cases {
		if err := c.q.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestQueryKey(t *testing.T) {
	q := Query{BugID: "bug7", Family: FamilyReason, Variant: VariantExtended, Text: "t"}
	k := q.Key()
	want := QueryKey{BugID: "bug7", Family: FamilyReason, Variant: VariantExtended}
	if k != want {
		t.Errorf("Key() = %+v, want %+v", k, want)
	}
}
