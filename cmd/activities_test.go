package cmd

import (
	"bytes"
	"strings"
	"testing"

	"togglepace/internal/classify"
	"togglepace/sevenpace"
)

func TestPrintActivities(t *testing.T) {
	categories := classify.NewClassifier(map[string]string{classify.KeyFeature: "feature-id"}).Categories()
	types := []sevenpace.ActivityType{
		{ID: "feature-id", Name: "Feature"},
		{ID: classify.Bug.ID, Name: "Bug"},
	}

	var out bytes.Buffer
	printActivities(&out, types, categories)
	text := out.String()

	if !strings.Contains(text, "[feature]") || !strings.Contains(text, "[bug]") {
		t.Fatalf("expected mapped categories in output:\n%s", text)
	}
	if !strings.Contains(text, "category internal_operations uses unknown activity type") {
		t.Fatalf("expected unknown category report:\n%s", text)
	}
	if strings.Index(text, "Bug") > strings.Index(text, "Feature") {
		t.Fatalf("expected activity types sorted by name:\n%s", text)
	}
}
