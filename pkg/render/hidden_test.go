package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/render"
)

func TestHiddenFields_MergeAndSort(t *testing.T) {
	merged := render.MergeHiddenFields(
		map[string]string{" locale ": "en", "": "dropped"},
		render.SubmissionToken("sub-1"),
		render.Hidden("attempt", 2),
		render.SubmissionToken("sub-2"),
	)

	want := []render.HiddenField{
		{Name: render.SubmissionFieldName, Value: "sub-2"},
		{Name: "attempt", Value: "2"},
		{Name: "locale", Value: "en"},
	}
	if diff := cmp.Diff(want, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}

	if render.MergeHiddenFields(nil) != nil {
		t.Fatal("expected nil for no fields")
	}
}
