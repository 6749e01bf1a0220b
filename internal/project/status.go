// Package project provides the core entity model for writing projects:
// the Project aggregate and its metadata, settings, and statistics
// components, plus the status lifecycle state machine.
package project

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status represents the lifecycle stage of a project.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)

// String returns the wire value of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether the status is a member of the enumerated domain.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCompleted, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// IsActiveState reports whether the project is in an active working stage.
func (s Status) IsActiveState() bool {
	return s == StatusDraft || s == StatusActive
}

// IsFinalState reports whether the status represents a settled disposition.
// Archived and completed projects can still be reactivated; deleted cannot.
func (s Status) IsFinalState() bool {
	return s == StatusCompleted || s == StatusArchived || s == StatusDeleted
}

// ParseStatus maps a wire value to a Status, falling back to StatusDraft
// for anything unrecognized. It never fails: unknown values in persisted
// files must not prevent a project from loading.
func ParseStatus(v string) Status {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if s.Valid() {
		return s
	}
	return StatusDraft
}

// UnmarshalJSON decodes a status defensively, falling back to the default
// on an unrecognized value.
func (s *Status) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	*s = ParseStatus(v)
	return nil
}

// statusTransitions is the static transition table for the project
// lifecycle. Deleted is terminal.
var statusTransitions = map[Status][]Status{
	StatusDraft:     {StatusActive, StatusArchived, StatusDeleted},
	StatusActive:    {StatusCompleted, StatusArchived, StatusDeleted},
	StatusCompleted: {StatusActive, StatusArchived, StatusDeleted},
	StatusArchived:  {StatusActive, StatusDeleted},
	StatusDeleted:   {},
}

// CanTransition reports whether moving from one status to another is a
// legal lifecycle move.
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given status.
func NextStatuses(from Status) []Status {
	next := statusTransitions[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Type represents the creative-work category of a project.
type Type string

const (
	TypeNovel      Type = "novel"
	TypeShortStory Type = "short_story"
	TypeNovella    Type = "novella"
	TypeScript     Type = "script"
	TypePoetry     Type = "poetry"
	TypeEssay      Type = "essay"
	TypeOther      Type = "other"
)

func (t Type) String() string {
	return string(t)
}

// Valid reports whether the type is a member of the enumerated domain.
func (t Type) Valid() bool {
	switch t {
	case TypeNovel, TypeShortStory, TypeNovella, TypeScript, TypePoetry, TypeEssay, TypeOther:
		return true
	}
	return false
}

// typicalWordCounts maps each project type to its typical word count range.
var typicalWordCounts = map[Type][2]int{
	TypeNovel:      {80000, 200000},
	TypeShortStory: {1000, 10000},
	TypeNovella:    {20000, 80000},
	TypeScript:     {15000, 30000},
	TypePoetry:     {100, 5000},
	TypeEssay:      {1000, 20000},
	TypeOther:      {0, 1000000},
}

// TypicalWordCountRange returns the low and high bounds of the typical
// word count for this project type.
func (t Type) TypicalWordCountRange() (int, int) {
	r, ok := typicalWordCounts[t]
	if !ok {
		return 0, 1000000
	}
	return r[0], r[1]
}

// DefaultTargetWordCount returns the default writing target for this type:
// the midpoint of its typical range.
func (t Type) DefaultTargetWordCount() int {
	low, high := t.TypicalWordCountRange()
	return (low + high) / 2
}

// ParseType maps a wire value to a Type, falling back to TypeNovel for
// anything unrecognized.
func ParseType(v string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(v)))
	if t.Valid() {
		return t
	}
	return TypeNovel
}

// UnmarshalJSON decodes a project type defensively.
func (t *Type) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("project type must be a string: %w", err)
	}
	*t = ParseType(v)
	return nil
}

// Priority orders projects by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// SortOrder returns a numeric rank, higher meaning more urgent.
func (p Priority) SortOrder() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ParsePriority maps a wire value to a Priority, falling back to normal.
func ParsePriority(v string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(v)))
	if p.Valid() {
		return p
	}
	return PriorityNormal
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("priority must be a string: %w", err)
	}
	*p = ParsePriority(v)
	return nil
}

// Visibility controls who can see a project.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
	VisibilityPublic  Visibility = "public"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return true
	}
	return false
}

// ParseVisibility maps a wire value to a Visibility, falling back to private.
func ParseVisibility(s string) Visibility {
	v := Visibility(strings.ToLower(strings.TrimSpace(s)))
	if v.Valid() {
		return v
	}
	return VisibilityPrivate
}

func (v *Visibility) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("visibility must be a string: %w", err)
	}
	*v = ParseVisibility(s)
	return nil
}

// Language identifies the writing language of a project.
type Language string

const (
	LanguageEnUS Language = "en_US"
	LanguageEnGB Language = "en_GB"
	LanguageZhCN Language = "zh_CN"
	LanguageZhTW Language = "zh_TW"
	LanguageJaJP Language = "ja_JP"
	LanguageKoKR Language = "ko_KR"
	LanguageFrFR Language = "fr_FR"
	LanguageDeDE Language = "de_DE"
	LanguageEsES Language = "es_ES"
	LanguageRuRU Language = "ru_RU"
)

func (l Language) Valid() bool {
	switch l {
	case LanguageEnUS, LanguageEnGB, LanguageZhCN, LanguageZhTW, LanguageJaJP,
		LanguageKoKR, LanguageFrFR, LanguageDeDE, LanguageEsES, LanguageRuRU:
		return true
	}
	return false
}

// IsCJK reports whether the language uses CJK word counting conventions.
func (l Language) IsCJK() bool {
	switch l {
	case LanguageZhCN, LanguageZhTW, LanguageJaJP, LanguageKoKR:
		return true
	}
	return false
}

// ParseLanguage maps a wire value to a Language, falling back to en_US.
func ParseLanguage(s string) Language {
	l := Language(s)
	if l.Valid() {
		return l
	}
	return LanguageEnUS
}

func (l *Language) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("language must be a string: %w", err)
	}
	*l = ParseLanguage(s)
	return nil
}
