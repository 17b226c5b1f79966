package intake

import "testing"

func TestParsePhone(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		null bool
	}{
		{in: "5551234567", want: 5551234567},
		{in: "(555) 123-4567", want: 5551234567},
		{in: "+1 555.123.4567", want: 15551234567},
		{in: "", null: true},
		{in: "   ", null: true},
		{in: "0", null: true},
		{in: "call me", null: true},
		{in: "555-ABC", null: true},
	}
	for _, tc := range cases {
		got := ParsePhone(tc.in)
		if tc.null {
			if got != nil {
				t.Fatalf("ParsePhone(%q) = %d, want nil", tc.in, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Fatalf("ParsePhone(%q) = %v, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNewRecord_KeepsTextVerbatim(t *testing.T) {
	rec := NewRecord(Values{
		FirstName: "  <b>Jane</b>",
		Problem:   "drum shows error <E21> & temp<40F",
		HomePhone: "555 000 1111",
	})
	if rec.FirstName != "  <b>Jane</b>" {
		t.Fatalf("first name = %q", rec.FirstName)
	}
	if rec.Issue != "drum shows error <E21> & temp<40F" {
		t.Fatalf("issue = %q", rec.Issue)
	}
	if rec.Work == nil || *rec.Work != 5550001111 {
		t.Fatalf("home phone should map to Work, got %v", rec.Work)
	}
}

func TestNewRecord_RequiredValuesStayNonEmpty(t *testing.T) {
	v := janeDoe()
	v.Problem = "<b></b>"
	if err := v.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := NewRecord(v).Row()[ColumnIssue]; got != "<b></b>" {
		t.Fatalf("issue column = %#v", got)
	}
}

func TestValuesMapRoundTrip(t *testing.T) {
	v := janeDoe()
	if got := ValuesFromMap(v.Map()); got != v {
		t.Fatalf("unexpected values %#v", got)
	}
	if _, ok := v.Get("bogus"); ok {
		t.Fatalf("unknown field should not resolve")
	}
}
