package project

import (
	"encoding/json"
	"testing"
)

func boolPtr(v bool) *bool        { return &v }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }

func TestSettingsDefaultsValidate(t *testing.T) {
	s := DefaultSettings()
	if errs := s.Validate(); len(errs) != 0 {
		t.Fatalf("defaults should validate, got %v", errs)
	}
}

func TestSettingsValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"auto-save too short", func(s *Settings) { s.AutoSaveInterval = 4 }},
		{"auto-save too long", func(s *Settings) { s.AutoSaveInterval = 3601 }},
		{"backup too short", func(s *Settings) { s.BackupInterval = 59 }},
		{"backup count zero", func(s *Settings) { s.BackupCount = 0 }},
		{"backup count too high", func(s *Settings) { s.BackupCount = 101 }},
		{"font too small", func(s *Settings) { s.EditorFontSize = 7 }},
		{"font too large", func(s *Settings) { s.EditorFontSize = 73 }},
		{"line spacing too low", func(s *Settings) { s.EditorLineSpacing = 0.4 }},
		{"tab width zero", func(s *Settings) { s.EditorTabWidth = 0 }},
		{"creativity above one", func(s *Settings) { s.AICreativityLevel = 1.1 }},
		{"suggestion delay too short", func(s *Settings) { s.AISuggestionDelay = 99 }},
	}
	for _, tt := range tests {
		s := DefaultSettings()
		tt.mutate(&s)
		if errs := s.Validate(); len(errs) != 1 {
			t.Errorf("%s: expected exactly 1 problem, got %v", tt.name, errs)
		}
	}
}

func TestSettingsApplyAIUpdate(t *testing.T) {
	s := DefaultSettings()
	s.ApplyAIUpdate(AIUpdate{
		Enabled:         boolPtr(false),
		CreativityLevel: floatPtr(0.3),
	})

	if s.AIEnabled {
		t.Error("AI should be disabled")
	}
	if s.AICreativityLevel != 0.3 {
		t.Errorf("creativity = %g, want 0.3", s.AICreativityLevel)
	}
	// Untouched fields keep their values.
	if s.AISuggestionDelay != 1000 {
		t.Errorf("suggestion delay changed unexpectedly: %d", s.AISuggestionDelay)
	}
}

func TestSettingsApplyEditorUpdate(t *testing.T) {
	s := DefaultSettings()
	s.ApplyEditorUpdate(EditorUpdate{
		FontFamily: stringPtr("Courier"),
		FontSize:   intPtr(14),
	})

	if s.EditorFontFamily != "Courier" || s.EditorFontSize != 14 {
		t.Errorf("editor update not applied: %q %d", s.EditorFontFamily, s.EditorFontSize)
	}
	if !s.EditorWordWrap {
		t.Error("word wrap should be untouched")
	}
}

func TestSettingsResetPreservesCustom(t *testing.T) {
	s := DefaultSettings()
	s.EditorFontSize = 20
	s.SetCustomSetting("panel_width", 240)

	s.ResetToDefaults()

	if s.EditorFontSize != 12 {
		t.Errorf("font size should reset, got %d", s.EditorFontSize)
	}
	if v, ok := s.CustomSetting("panel_width"); !ok || v != 240 {
		t.Errorf("custom settings should survive reset, got %v %v", v, ok)
	}
}

func TestSettingsDecodeDefaults(t *testing.T) {
	var s Settings
	if err := json.Unmarshal([]byte(`{"editor_font_size":18}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.EditorFontSize != 18 {
		t.Errorf("font size = %d", s.EditorFontSize)
	}
	if s.AutoSaveInterval != 30 {
		t.Errorf("absent auto-save interval should default to 30, got %d", s.AutoSaveInterval)
	}
	if !s.BackupEnabled {
		t.Error("absent backup flag should default to enabled")
	}
}

func TestSettingsClone(t *testing.T) {
	s := DefaultSettings()
	s.SetCustomSetting("key", "value")

	c := s.Clone()
	c.SetCustomSetting("key", "changed")
	c.EditorFontSize = 99

	if v, _ := s.CustomSetting("key"); v != "value" {
		t.Errorf("clone custom settings should be independent, got %v", v)
	}
	if s.EditorFontSize == 99 {
		t.Error("clone scalar fields should be independent")
	}
}
