package segment

import "testing"

func TestValidate_Valid(t *testing.T) {
	segments, err := validate(`[{"id":"A","content":"one"},{"id":"B","content":"two"}]`)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].ID != "A" || segments[0].Content != "one" {
		t.Errorf("unexpected first segment: %+v", segments[0])
	}
}

func TestValidate_LeadingWhitespaceOK(t *testing.T) {
	if _, err := validate("\n  [{\"id\":\"A\",\"content\":\"one\"}]\n"); err != nil {
		t.Errorf("whitespace around the array should be fine, got %v", err)
	}
}

func TestValidate_ExtraKeysTolerated(t *testing.T) {
	segments, err := validate(`[{"id":"Intro","content":"First part.","note":"extra key"}]`)
	if err != nil {
		t.Fatalf("extra keys beyond id/content must be accepted, got %v", err)
	}
	if segments[0].ID != "Intro" || segments[0].Content != "First part." {
		t.Errorf("unexpected segment: %+v", segments[0])
	}
}

func TestValidate_EmptyValuesTolerated(t *testing.T) {
	// Only key presence is required; the provider decides the values.
	segments, err := validate(`[{"id":"","content":""}]`)
	if err != nil {
		t.Fatalf("empty string values must be accepted, got %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose around", `Here you go: [{"id":"A","content":"one"}]`},
		{"code fence", "```json\n[{\"id\":\"A\",\"content\":\"one\"}]\n```"},
		{"trailing data", `[{"id":"A","content":"one"}] thanks!`},
		{"object not array", `{"id":"A","content":"one"}`},
		{"array of strings", `["one","two"]`},
		{"array of numbers", `[1,2,3]`},
		{"null", `null`},
		{"empty array", `[]`},
		{"missing id", `[{"content":"one"}]`},
		{"missing content", `[{"id":"A"}]`},
		{"id not a string", `[{"id":1,"content":"one"}]`},
		{"content not a string", `[{"id":"A","content":["one"]}]`},
		{"not json", `certainly not json`},
		{"empty string", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := validate(tc.raw); err == nil {
				t.Errorf("validate(%q) should fail", tc.raw)
			}
		})
	}
}
