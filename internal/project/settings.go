package project

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Settings is the per-project bag of user-tunable behavior. Every numeric
// field has a documented legal range enforced by Validate.
type Settings struct {
	// Auto-save
	AutoSaveEnabled  bool `json:"auto_save_enabled"`
	AutoSaveInterval int  `json:"auto_save_interval"` // seconds, 5-3600

	// Backups
	BackupEnabled  bool `json:"backup_enabled"`
	BackupInterval int  `json:"backup_interval"` // seconds, 60-86400
	BackupCount    int  `json:"backup_count"`    // 1-100

	// Editor
	EditorFontFamily           string  `json:"editor_font_family"`
	EditorFontSize             int     `json:"editor_font_size"`    // 8-72
	EditorLineSpacing          float64 `json:"editor_line_spacing"` // 0.5-5.0
	EditorWordWrap             bool    `json:"editor_word_wrap"`
	EditorShowLineNumbers      bool    `json:"editor_show_line_numbers"`
	EditorHighlightCurrentLine bool    `json:"editor_highlight_current_line"`
	EditorTabWidth             int     `json:"editor_tab_width"` // 1-16
	EditorAutoIndent           bool    `json:"editor_auto_indent"`

	// Theme
	ThemeName string `json:"theme_name"`
	DarkMode  bool   `json:"dark_mode"`

	// AI assistance knobs. The AI subsystem itself lives outside this
	// module; these are plain tunables persisted with the project.
	AIEnabled         bool    `json:"ai_enabled"`
	AIAutoSuggestions bool    `json:"ai_auto_suggestions"`
	AISuggestionDelay int     `json:"ai_suggestion_delay"` // milliseconds, 100-10000
	AIModelPreference string  `json:"ai_model_preference"`
	AICreativityLevel float64 `json:"ai_creativity_level"` // 0.0-1.0
	AIResponseLength  string  `json:"ai_response_length"`  // short, medium, long

	// Writing aids
	SpellCheckEnabled       bool `json:"spell_check_enabled"`
	GrammarCheckEnabled     bool `json:"grammar_check_enabled"`
	AutoCompleteEnabled     bool `json:"auto_complete_enabled"`
	WordCountTargetVisible  bool `json:"word_count_target_visible"`
	ProgressTrackingEnabled bool `json:"progress_tracking_enabled"`

	// Export defaults
	DefaultExportFormat     string `json:"default_export_format"`
	ExportIncludeMetadata   bool   `json:"export_include_metadata"`
	ExportIncludeStatistics bool   `json:"export_include_statistics"`

	// CustomSettings is an open-ended extensibility point.
	CustomSettings map[string]any `json:"custom_settings"`
}

// DefaultSettings returns settings with every field at its default.
func DefaultSettings() Settings {
	return Settings{
		AutoSaveEnabled:  true,
		AutoSaveInterval: 30,

		BackupEnabled:  true,
		BackupInterval: 3600,
		BackupCount:    10,

		EditorFontFamily:           "Georgia",
		EditorFontSize:             12,
		EditorLineSpacing:          1.2,
		EditorWordWrap:             true,
		EditorShowLineNumbers:      true,
		EditorHighlightCurrentLine: true,
		EditorTabWidth:             4,
		EditorAutoIndent:           true,

		ThemeName: "default",

		AIEnabled:         true,
		AIAutoSuggestions: true,
		AISuggestionDelay: 1000,
		AIModelPreference: "default",
		AICreativityLevel: 0.7,
		AIResponseLength:  "medium",

		SpellCheckEnabled:       true,
		GrammarCheckEnabled:     true,
		AutoCompleteEnabled:     true,
		WordCountTargetVisible:  true,
		ProgressTrackingEnabled: true,

		DefaultExportFormat:   "docx",
		ExportIncludeMetadata: true,

		CustomSettings: map[string]any{},
	}
}

// AIUpdate is a partial update of the AI settings group. Nil fields are
// left unchanged; the struct itself is the allow-list.
type AIUpdate struct {
	Enabled         *bool
	AutoSuggestions *bool
	SuggestionDelay *int
	ModelPreference *string
	CreativityLevel *float64
	ResponseLength  *string
}

// ApplyAIUpdate applies the non-nil fields of the update.
func (s *Settings) ApplyAIUpdate(u AIUpdate) {
	if u.Enabled != nil {
		s.AIEnabled = *u.Enabled
	}
	if u.AutoSuggestions != nil {
		s.AIAutoSuggestions = *u.AutoSuggestions
	}
	if u.SuggestionDelay != nil {
		s.AISuggestionDelay = *u.SuggestionDelay
	}
	if u.ModelPreference != nil {
		s.AIModelPreference = *u.ModelPreference
	}
	if u.CreativityLevel != nil {
		s.AICreativityLevel = *u.CreativityLevel
	}
	if u.ResponseLength != nil {
		s.AIResponseLength = *u.ResponseLength
	}
}

// EditorUpdate is a partial update of the editor settings group.
type EditorUpdate struct {
	FontFamily           *string
	FontSize             *int
	LineSpacing          *float64
	WordWrap             *bool
	ShowLineNumbers      *bool
	HighlightCurrentLine *bool
	TabWidth             *int
	AutoIndent           *bool
}

// ApplyEditorUpdate applies the non-nil fields of the update.
func (s *Settings) ApplyEditorUpdate(u EditorUpdate) {
	if u.FontFamily != nil {
		s.EditorFontFamily = *u.FontFamily
	}
	if u.FontSize != nil {
		s.EditorFontSize = *u.FontSize
	}
	if u.LineSpacing != nil {
		s.EditorLineSpacing = *u.LineSpacing
	}
	if u.WordWrap != nil {
		s.EditorWordWrap = *u.WordWrap
	}
	if u.ShowLineNumbers != nil {
		s.EditorShowLineNumbers = *u.ShowLineNumbers
	}
	if u.HighlightCurrentLine != nil {
		s.EditorHighlightCurrentLine = *u.HighlightCurrentLine
	}
	if u.TabWidth != nil {
		s.EditorTabWidth = *u.TabWidth
	}
	if u.AutoIndent != nil {
		s.EditorAutoIndent = *u.AutoIndent
	}
}

// BackupUpdate is a partial update of the backup settings group.
type BackupUpdate struct {
	Enabled  *bool
	Interval *int
	Count    *int
}

// ApplyBackupUpdate applies the non-nil fields of the update.
func (s *Settings) ApplyBackupUpdate(u BackupUpdate) {
	if u.Enabled != nil {
		s.BackupEnabled = *u.Enabled
	}
	if u.Interval != nil {
		s.BackupInterval = *u.Interval
	}
	if u.Count != nil {
		s.BackupCount = *u.Count
	}
}

// SetCustomSetting stores an open-ended custom setting value.
func (s *Settings) SetCustomSetting(key string, value any) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if s.CustomSettings == nil {
		s.CustomSettings = map[string]any{}
	}
	s.CustomSettings[key] = value
}

// CustomSetting reads a custom setting, returning ok=false when absent.
func (s *Settings) CustomSetting(key string) (any, bool) {
	v, ok := s.CustomSettings[strings.TrimSpace(key)]
	return v, ok
}

// RemoveCustomSetting deletes a custom setting if present.
func (s *Settings) RemoveCustomSetting(key string) {
	delete(s.CustomSettings, strings.TrimSpace(key))
}

// ResetToDefaults restores every field to its default value while
// preserving the custom settings map.
func (s *Settings) ResetToDefaults() {
	custom := s.CustomSettings
	*s = DefaultSettings()
	if custom != nil {
		s.CustomSettings = custom
	}
}

// Validate returns the ordered list of settings range violations. An
// empty list means the settings are valid.
func (s *Settings) Validate() []string {
	var errs []string

	if s.AutoSaveInterval < 5 {
		errs = append(errs, "auto-save interval cannot be less than 5 seconds")
	} else if s.AutoSaveInterval > 3600 {
		errs = append(errs, "auto-save interval cannot exceed 1 hour")
	}
	if s.BackupInterval < 60 {
		errs = append(errs, "backup interval cannot be less than 1 minute")
	} else if s.BackupInterval > 86400 {
		errs = append(errs, "backup interval cannot exceed 1 day")
	}
	if s.BackupCount < 1 {
		errs = append(errs, "backup count cannot be less than 1")
	} else if s.BackupCount > 100 {
		errs = append(errs, "backup count cannot exceed 100")
	}
	if s.EditorFontSize < 8 {
		errs = append(errs, "editor font size cannot be less than 8")
	} else if s.EditorFontSize > 72 {
		errs = append(errs, "editor font size cannot exceed 72")
	}
	if s.EditorLineSpacing < 0.5 {
		errs = append(errs, "editor line spacing cannot be less than 0.5")
	} else if s.EditorLineSpacing > 5.0 {
		errs = append(errs, "editor line spacing cannot exceed 5.0")
	}
	if s.EditorTabWidth < 1 {
		errs = append(errs, "editor tab width cannot be less than 1")
	} else if s.EditorTabWidth > 16 {
		errs = append(errs, "editor tab width cannot exceed 16")
	}
	if s.AICreativityLevel < 0.0 || s.AICreativityLevel > 1.0 {
		errs = append(errs, fmt.Sprintf("ai creativity level must be between 0.0 and 1.0 (got %g)", s.AICreativityLevel))
	}
	if s.AISuggestionDelay < 100 {
		errs = append(errs, "ai suggestion delay cannot be less than 100 milliseconds")
	} else if s.AISuggestionDelay > 10000 {
		errs = append(errs, "ai suggestion delay cannot exceed 10 seconds")
	}

	return errs
}

// UnmarshalJSON decodes settings on top of the defaults, so fields absent
// from older files keep their default values.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type alias Settings
	a := alias(DefaultSettings())
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.CustomSettings == nil {
		a.CustomSettings = map[string]any{}
	}
	*s = Settings(a)
	return nil
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() Settings {
	out := *s
	out.CustomSettings = make(map[string]any, len(s.CustomSettings))
	for k, v := range s.CustomSettings {
		out.CustomSettings[k] = v
	}
	return out
}
