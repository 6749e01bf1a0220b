package project

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FormatVersion is written into every serialized project and checked by
// the storage migration pass.
const FormatVersion = "2.0"

// milestone thresholds checked on every word-count update.
var wordMilestones = []int{1000, 10000, 50000, 100000}

// Project is the aggregate root for a writing project. Components are
// value types so a Project can be copied with Clone and compared field
// by field in tests.
type Project struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         Type       `json:"project_type"`
	Status       Status     `json:"status"`
	RootPath     string     `json:"root_path,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastOpenedAt *time.Time `json:"last_opened_at,omitempty"`

	Metadata   Metadata   `json:"metadata"`
	Settings   Settings   `json:"settings"`
	Statistics Statistics `json:"statistics"`

	Version       string `json:"version"`
	FormatVersion string `json:"format_version"`
}

// New creates a project in the draft state with component defaults. The
// type's typical word count becomes the metadata target.
func New(name string, typ Type) *Project {
	now := time.Now()
	p := &Project{
		ID:            uuid.NewString(),
		Name:          name,
		Type:          typ,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
		Metadata:      DefaultMetadata(),
		Settings:      DefaultSettings(),
		Statistics:    DefaultStatistics(),
		Version:       "1.0.0",
		FormatVersion: FormatVersion,
	}
	p.Metadata.TargetWordCount = typ.DefaultTargetWordCount()
	return p
}

// Touch bumps the updated-at timestamp.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now()
}

// Open records that the project was opened.
func (p *Project) Open() {
	now := time.Now()
	p.LastOpenedAt = &now
	p.UpdatedAt = now
}

// Rename sets a new display name.
func (p *Project) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if len(name) > 200 {
		return fmt.Errorf("project name cannot exceed 200 characters")
	}
	p.Name = name
	p.Touch()
	return nil
}

// ChangeStatus moves the project to a new lifecycle state. It returns
// false when the transition is not allowed from the current state, and
// an error only when the target status itself is unknown.
func (p *Project) ChangeStatus(to Status) (bool, error) {
	if !to.Valid() {
		return false, fmt.Errorf("invalid status: %s", to)
	}
	if !CanTransition(p.Status, to) {
		return false, nil
	}
	from := p.Status
	p.Status = to
	p.Touch()
	p.Statistics.AddMilestone(fmt.Sprintf("status changed from %s to %s", from, to), time.Time{})
	return true, nil
}

// UpdateWordCount sets the project's total word count. When
// characterCount is nil the character total is estimated at twice the
// word count. Crossing a word milestone records it in the statistics.
func (p *Project) UpdateWordCount(wordCount int, characterCount *int) error {
	if wordCount < 0 {
		return fmt.Errorf("word count cannot be negative")
	}
	chars := wordCount * 2
	if characterCount != nil {
		if *characterCount < 0 {
			return fmt.Errorf("character count cannot be negative")
		}
		chars = *characterCount
	}

	previous := p.Statistics.TotalWords
	p.Statistics.UpdateWordCount(wordCount, chars)
	p.Touch()

	for _, m := range wordMilestones {
		if previous < m && wordCount >= m {
			p.Statistics.AddMilestone(fmt.Sprintf("%d words", m), time.Time{})
		}
	}
	return nil
}

// AddWritingSession records a writing session and folds it into the
// daily statistics.
func (p *Project) AddWritingSession(durationMinutes float64, wordsWritten, charactersWritten int) {
	p.Statistics.AddSession(durationMinutes, wordsWritten, charactersWritten)
	p.Touch()
}

// ProgressPercentage returns completion toward the metadata word target,
// clamped to [0, 100]. A zero or negative target yields 0.
func (p *Project) ProgressPercentage() float64 {
	target := p.Metadata.TargetWordCount
	if target <= 0 {
		return 0
	}
	pct := float64(p.Statistics.TotalWords) / float64(target) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// IsCompleted reports whether the project is in the completed state or
// has reached its word target. A zero target counts as reached.
func (p *Project) IsCompleted() bool {
	return p.Status == StatusCompleted || p.Statistics.TotalWords >= p.Metadata.TargetWordCount
}

// Validate returns every validation problem with the project, in field
// order. An empty slice means the project is valid.
func (p *Project) Validate() []string {
	var problems []string
	if p.Name == "" {
		problems = append(problems, "project name is required")
	} else if len(p.Name) > 200 {
		problems = append(problems, "project name cannot exceed 200 characters")
	}
	problems = append(problems, p.Metadata.Validate()...)
	problems = append(problems, p.Settings.Validate()...)
	return problems
}

// Clone returns a deep copy of the project under the same identity.
func (p *Project) Clone() *Project {
	out := *p
	if p.LastOpenedAt != nil {
		t := *p.LastOpenedAt
		out.LastOpenedAt = &t
	}
	out.Metadata = p.Metadata.Clone()
	out.Settings = p.Settings.Clone()
	out.Statistics = p.Statistics.Clone()
	return &out
}

// Copy returns an independent duplicate with a fresh identity: new ID,
// name suffixed with " (Copy)", fresh timestamps, and no open history.
// Settings, metadata, and statistics carry over.
func (p *Project) Copy() *Project {
	out := p.Clone()
	now := time.Now()
	out.ID = uuid.NewString()
	out.Name = p.Name + " (Copy)"
	out.CreatedAt = now
	out.UpdatedAt = now
	out.LastOpenedAt = nil
	out.RootPath = ""
	return out
}

// projectWire mirrors Project for decoding, with timestamps as raw
// strings and components as raw messages so one malformed section never
// loses the rest of the file.
type projectWire struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         Type   `json:"project_type"`
	Status       Status `json:"status"`
	RootPath     string `json:"root_path"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	LastOpenedAt string `json:"last_opened_at"`

	Metadata   json.RawMessage `json:"metadata"`
	Settings   json.RawMessage `json:"settings"`
	Statistics json.RawMessage `json:"statistics"`

	Version       string `json:"version"`
	FormatVersion string `json:"format_version"`
}

// UnmarshalJSON decodes a project defensively. Unknown enum values fall
// back to their defaults, malformed timestamps become the current time,
// and a component that fails to decode is replaced with fresh defaults
// rather than failing the whole load.
func (p *Project) UnmarshalJSON(data []byte) error {
	var w projectWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode project: %w", err)
	}

	now := time.Now()
	parseTime := func(v string) time.Time {
		if v == "" {
			return now
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
		return now
	}

	p.ID = w.ID
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Name = w.Name
	p.Type = ParseType(string(w.Type))
	p.Status = ParseStatus(string(w.Status))
	p.RootPath = w.RootPath
	p.CreatedAt = parseTime(w.CreatedAt)
	p.UpdatedAt = parseTime(w.UpdatedAt)
	p.LastOpenedAt = nil
	if w.LastOpenedAt != "" {
		t := parseTime(w.LastOpenedAt)
		p.LastOpenedAt = &t
	}

	p.Metadata = DefaultMetadata()
	if len(w.Metadata) > 0 {
		if err := json.Unmarshal(w.Metadata, &p.Metadata); err != nil {
			p.Metadata = DefaultMetadata()
		}
	}
	p.Settings = DefaultSettings()
	if len(w.Settings) > 0 {
		if err := json.Unmarshal(w.Settings, &p.Settings); err != nil {
			p.Settings = DefaultSettings()
		}
	}
	p.Statistics = DefaultStatistics()
	if len(w.Statistics) > 0 {
		if err := json.Unmarshal(w.Statistics, &p.Statistics); err != nil {
			p.Statistics = DefaultStatistics()
		}
	}

	// Older files kept the display name under metadata as a title.
	if p.Name == "" && len(w.Metadata) > 0 {
		var legacy struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(w.Metadata, &legacy); err == nil {
			p.Name = legacy.Title
		}
	}

	p.Version = w.Version
	if p.Version == "" {
		p.Version = "1.0.0"
	}
	p.FormatVersion = w.FormatVersion
	if p.FormatVersion == "" {
		p.FormatVersion = FormatVersion
	}
	return nil
}
