package project

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMetadataTagNormalization(t *testing.T) {
	m := DefaultMetadata()
	m.AddTag("  Fantasy ")
	m.AddTag("fantasy")
	m.AddTag("FANTASY")
	m.AddTag("mystery")

	if len(m.Tags) != 2 {
		t.Fatalf("expected 2 tags after dedupe, got %v", m.Tags)
	}
	if !m.HasTag("Fantasy") {
		t.Error("HasTag should match case-insensitively")
	}

	m.RemoveTag("FANTASY")
	if m.HasTag("fantasy") {
		t.Error("tag should be removed")
	}
	if len(m.Tags) != 1 {
		t.Errorf("expected 1 tag, got %v", m.Tags)
	}
}

func TestMetadataEmptyLabelIgnored(t *testing.T) {
	m := DefaultMetadata()
	m.AddTag("   ")
	m.AddKeyword("")
	if len(m.Tags) != 0 || len(m.Keywords) != 0 {
		t.Errorf("blank labels should not be inserted: tags=%v keywords=%v", m.Tags, m.Keywords)
	}
}

func TestMetadataCustomFields(t *testing.T) {
	m := DefaultMetadata()
	m.SetCustomField("imprint", "Nightowl Press")

	v, ok := m.CustomField("imprint")
	if !ok || v != "Nightowl Press" {
		t.Errorf("CustomField = %v, %v", v, ok)
	}

	m.RemoveCustomField("imprint")
	if _, ok := m.CustomField("imprint"); ok {
		t.Error("custom field should be removed")
	}
}

func TestMetadataValidate(t *testing.T) {
	m := DefaultMetadata()
	if errs := m.Validate(); len(errs) != 0 {
		t.Fatalf("defaults should validate, got %v", errs)
	}

	m.TargetWordCount = -1
	m.Author = strings.Repeat("a", 101)
	m.Description = strings.Repeat("d", 5001)
	m.ISBN = "notanisbn"
	errs := m.Validate()
	if len(errs) != 4 {
		t.Fatalf("expected 4 problems, got %v", errs)
	}
}

func TestValidISBN(t *testing.T) {
	tests := []struct {
		isbn string
		want bool
	}{
		{"978-0-306-40615-7", true},
		{"9780306406157", true},
		{"0-306-40615-2", true},
		{"030640615X", true},
		{"12345", false},
		{"978030640615a", false},
	}
	for _, tt := range tests {
		if got := validISBN(tt.isbn); got != tt.want {
			t.Errorf("validISBN(%q) = %v, want %v", tt.isbn, got, tt.want)
		}
	}
}

func TestMetadataDecodeDefaults(t *testing.T) {
	var m Metadata
	if err := json.Unmarshal([]byte(`{"author":"Ursula"}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Author != "Ursula" {
		t.Errorf("author = %q", m.Author)
	}
	if m.TargetWordCount != 80000 {
		t.Errorf("absent target should default to 80000, got %d", m.TargetWordCount)
	}
	if m.Language != LanguageEnUS {
		t.Errorf("absent language should default to en_US, got %s", m.Language)
	}
}

func TestMetadataDecodeBadPublicationDate(t *testing.T) {
	var m Metadata
	if err := json.Unmarshal([]byte(`{"publication_date":"not a date"}`), &m); err != nil {
		t.Fatalf("malformed date should not fail the load: %v", err)
	}
	if m.PublicationDate != nil {
		t.Error("malformed publication date should decode as nil")
	}
}

func TestMetadataClone(t *testing.T) {
	m := DefaultMetadata()
	m.AddTag("epic")
	m.SetCustomField("series_index", 3)

	c := m.Clone()
	c.AddTag("new")
	c.SetCustomField("series_index", 4)

	if m.HasTag("new") {
		t.Error("clone tags should be independent")
	}
	if v, _ := m.CustomField("series_index"); v != 3 {
		t.Errorf("clone custom fields should be independent, got %v", v)
	}
}

func TestMetadataSearchableText(t *testing.T) {
	m := DefaultMetadata()
	m.Author = "Le Guin"
	m.Genre = "Fantasy"
	m.AddTag("earthsea")

	text := m.SearchableText()
	for _, want := range []string{"le guin", "fantasy", "earthsea"} {
		if !strings.Contains(text, want) {
			t.Errorf("searchable text missing %q: %q", want, text)
		}
	}
}
