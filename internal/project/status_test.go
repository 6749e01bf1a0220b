package project

import (
	"encoding/json"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:     {StatusActive, StatusArchived, StatusDeleted},
		StatusActive:    {StatusCompleted, StatusArchived, StatusDeleted},
		StatusCompleted: {StatusActive, StatusArchived, StatusDeleted},
		StatusArchived:  {StatusActive, StatusDeleted},
		StatusDeleted:   {},
	}

	for from, targets := range allowed {
		ok := map[Status]bool{}
		for _, to := range targets {
			ok[to] = true
		}
		for _, to := range []Status{StatusDraft, StatusActive, StatusCompleted, StatusArchived, StatusDeleted} {
			got := CanTransition(from, to)
			if got != ok[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, ok[to])
			}
		}
	}
}

func TestStatusDeletedIsTerminal(t *testing.T) {
	if next := NextStatuses(StatusDeleted); len(next) != 0 {
		t.Errorf("deleted should have no transitions, got %v", next)
	}
}

func TestParseStatusFallback(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"active", StatusActive},
		{"ACTIVE", StatusActive},
		{"  archived ", StatusArchived},
		{"bogus", StatusDraft},
		{"", StatusDraft},
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStatusUnmarshalFallback(t *testing.T) {
	var s Status
	if err := json.Unmarshal([]byte(`"garbage"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != StatusDraft {
		t.Errorf("got %s, want draft fallback", s)
	}
}

func TestTypeDefaultTargets(t *testing.T) {
	tests := []struct {
		typ  Type
		want int
	}{
		{TypeNovel, 140000},
		{TypeShortStory, 5500},
		{TypeNovella, 50000},
		{TypeScript, 22500},
		{TypePoetry, 2550},
		{TypeEssay, 10500},
		{TypeOther, 500000},
	}
	for _, tt := range tests {
		if got := tt.typ.DefaultTargetWordCount(); got != tt.want {
			t.Errorf("%s default target = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestLanguageIsCJK(t *testing.T) {
	if !Language("zh_CN").IsCJK() {
		t.Error("zh_CN should be CJK")
	}
	if !Language("ja_JP").IsCJK() {
		t.Error("ja_JP should be CJK")
	}
	if Language("en_US").IsCJK() {
		t.Error("en_US should not be CJK")
	}
}
