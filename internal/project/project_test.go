package project

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewProjectDefaults(t *testing.T) {
	p := New("The Long Winter", TypeNovel)

	if p.ID == "" {
		t.Error("new project should get an id")
	}
	if p.Status != StatusDraft {
		t.Errorf("status = %s, want draft", p.Status)
	}
	if p.Metadata.TargetWordCount != 140000 {
		t.Errorf("novel target = %d, want 140000", p.Metadata.TargetWordCount)
	}
	if p.FormatVersion != FormatVersion {
		t.Errorf("format version = %q", p.FormatVersion)
	}
	if p.LastOpenedAt != nil {
		t.Error("new project should not have an open time")
	}
}

func TestChangeStatus(t *testing.T) {
	p := New("p", TypeNovel)

	ok, err := p.ChangeStatus(StatusActive)
	if err != nil || !ok {
		t.Fatalf("draft -> active should succeed: %v %v", ok, err)
	}

	ok, err = p.ChangeStatus(StatusDraft)
	if err != nil {
		t.Fatalf("legal status, illegal transition, should not error: %v", err)
	}
	if ok {
		t.Error("active -> draft should be rejected")
	}
	if p.Status != StatusActive {
		t.Errorf("rejected transition must not change status, got %s", p.Status)
	}

	if _, err := p.ChangeStatus(Status("bogus")); err == nil {
		t.Error("unknown status should error")
	}

	if _, ok := p.Statistics.Milestone("status changed from draft to active"); !ok {
		t.Error("status change should record a milestone")
	}
}

func TestChangeStatusDeletedTerminal(t *testing.T) {
	p := New("p", TypeNovel)
	if ok, _ := p.ChangeStatus(StatusDeleted); !ok {
		t.Fatal("draft -> deleted should succeed")
	}
	for _, to := range []Status{StatusDraft, StatusActive, StatusCompleted, StatusArchived} {
		if ok, _ := p.ChangeStatus(to); ok {
			t.Errorf("deleted -> %s should be rejected", to)
		}
	}
}

func TestUpdateWordCount(t *testing.T) {
	p := New("p", TypeNovel)

	if err := p.UpdateWordCount(-1, nil); err == nil {
		t.Error("negative word count should error")
	}

	if err := p.UpdateWordCount(1500, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Statistics.TotalWords != 1500 {
		t.Errorf("total words = %d", p.Statistics.TotalWords)
	}
	if p.Statistics.TotalCharacters != 3000 {
		t.Errorf("nil characters should estimate 2x words, got %d", p.Statistics.TotalCharacters)
	}

	chars := 9000
	if err := p.UpdateWordCount(2000, &chars); err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Statistics.TotalCharacters != 9000 {
		t.Errorf("explicit characters ignored: %d", p.Statistics.TotalCharacters)
	}
}

func TestUpdateWordCountMilestones(t *testing.T) {
	p := New("p", TypeNovel)

	if err := p.UpdateWordCount(999, nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Statistics.Milestone("1000 words"); ok {
		t.Error("999 words should not reach the 1000 milestone")
	}

	if err := p.UpdateWordCount(12000, nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"1000 words", "10000 words"} {
		if _, ok := p.Statistics.Milestone(name); !ok {
			t.Errorf("milestone %q should be recorded", name)
		}
	}
	if _, ok := p.Statistics.Milestone("50000 words"); ok {
		t.Error("50000 milestone recorded too early")
	}
}

func TestProgressPercentage(t *testing.T) {
	p := New("p", TypeNovel)
	p.Metadata.TargetWordCount = 1000

	if got := p.ProgressPercentage(); got != 0 {
		t.Errorf("no words yet, progress = %g", got)
	}

	p.Statistics.TotalWords = 250
	if got := p.ProgressPercentage(); got != 25 {
		t.Errorf("progress = %g, want 25", got)
	}

	p.Statistics.TotalWords = 5000
	if got := p.ProgressPercentage(); got != 100 {
		t.Errorf("progress should clamp at 100, got %g", got)
	}

	p.Metadata.TargetWordCount = 0
	if got := p.ProgressPercentage(); got != 0 {
		t.Errorf("zero target progress = %g, want 0", got)
	}
}

func TestIsCompleted(t *testing.T) {
	p := New("p", TypeShortStory)
	p.Metadata.TargetWordCount = 100
	if p.IsCompleted() {
		t.Error("fresh project should not be completed")
	}

	p.Statistics.TotalWords = 100
	if !p.IsCompleted() {
		t.Error("reaching the target should count as completed")
	}
}

func TestIsCompletedZeroTarget(t *testing.T) {
	p := New("p", TypeShortStory)
	p.Metadata.TargetWordCount = 0

	// 0 >= 0: a zero target is always reached.
	if !p.IsCompleted() {
		t.Error("zero target should count as completed")
	}
	p.Statistics.TotalWords = 10
	if !p.IsCompleted() {
		t.Error("words past a zero target should count as completed")
	}
}

func TestProjectValidate(t *testing.T) {
	p := New("", TypeNovel)
	errs := p.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "name") {
		t.Errorf("empty name should be the one problem, got %v", errs)
	}

	p.Name = strings.Repeat("n", 201)
	p.Settings.EditorFontSize = 200
	errs = p.Validate()
	if len(errs) != 2 {
		t.Errorf("expected name and settings problems, got %v", errs)
	}
}

func TestRename(t *testing.T) {
	p := New("old", TypeNovel)
	if err := p.Rename(""); err == nil {
		t.Error("empty name should error")
	}
	if err := p.Rename(strings.Repeat("n", 201)); err == nil {
		t.Error("overlong name should error")
	}
	if err := p.Rename("new"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if p.Name != "new" {
		t.Errorf("name = %q", p.Name)
	}
}

func TestCopy(t *testing.T) {
	p := New("Original", TypeNovel)
	p.Open()
	p.Metadata.AddTag("dark")
	if err := p.UpdateWordCount(500, nil); err != nil {
		t.Fatal(err)
	}

	c := p.Copy()

	if c.ID == p.ID {
		t.Error("copy must get a fresh id")
	}
	if c.Name != "Original (Copy)" {
		t.Errorf("copy name = %q", c.Name)
	}
	if c.LastOpenedAt != nil {
		t.Error("copy should not inherit open history")
	}
	if !c.Metadata.HasTag("dark") {
		t.Error("copy should carry metadata over")
	}
	if c.Statistics.TotalWords != 500 {
		t.Error("copy should carry statistics over")
	}

	c.Metadata.AddTag("light")
	if p.Metadata.HasTag("light") {
		t.Error("copy must be independent of the original")
	}
}

func TestProjectRoundTrip(t *testing.T) {
	p := New("Round Trip", TypeNovella)
	p.Open()
	p.Metadata.Author = "A. Writer"
	p.Metadata.AddTag("sf")
	p.Settings.EditorFontSize = 16
	if err := p.UpdateWordCount(1234, nil); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Project
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.ID != p.ID || got.Name != p.Name || got.Type != p.Type || got.Status != p.Status {
		t.Errorf("identity lost in round trip: %+v", got)
	}
	if got.LastOpenedAt == nil {
		t.Error("last opened lost in round trip")
	}
	if got.Metadata.Author != "A. Writer" || !got.Metadata.HasTag("sf") {
		t.Error("metadata lost in round trip")
	}
	if got.Settings.EditorFontSize != 16 {
		t.Error("settings lost in round trip")
	}
	if got.Statistics.TotalWords != 1234 {
		t.Error("statistics lost in round trip")
	}
}

func TestProjectDecodeDefensive(t *testing.T) {
	raw := `{
		"id": "abc",
		"name": "Damaged",
		"project_type": "unknown_type",
		"status": "whatever",
		"created_at": "not a timestamp",
		"metadata": "this is not an object",
		"settings": {"editor_font_size": 14},
		"statistics": 12
	}`

	var p Project
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("damaged sections should not fail the load: %v", err)
	}

	if p.Type != TypeNovel {
		t.Errorf("unknown type should fall back to novel, got %s", p.Type)
	}
	if p.Status != StatusDraft {
		t.Errorf("unknown status should fall back to draft, got %s", p.Status)
	}
	if time.Since(p.CreatedAt) > time.Minute {
		t.Errorf("malformed timestamp should become now, got %v", p.CreatedAt)
	}
	if p.Metadata.TargetWordCount != 80000 {
		t.Error("malformed metadata should fall back to defaults")
	}
	if p.Settings.EditorFontSize != 14 {
		t.Error("valid settings section should still decode")
	}
	if p.Statistics.DailyWordGoal != 1000 {
		t.Error("malformed statistics should fall back to defaults")
	}
}

func TestProjectDecodeLegacyTitle(t *testing.T) {
	raw := `{"id": "x", "metadata": {"title": "Older File"}}`

	var p Project
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Name != "Older File" {
		t.Errorf("legacy metadata title should become the name, got %q", p.Name)
	}
}

func TestProjectDecodeMissingID(t *testing.T) {
	var p Project
	if err := json.Unmarshal([]byte(`{"name": "No ID"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID == "" {
		t.Error("missing id should be regenerated")
	}
}

func TestProjectAddWritingSession(t *testing.T) {
	p := New("Session Test", TypeNovel)
	before := p.UpdatedAt

	p.AddWritingSession(30, 600, 3100)

	if p.Statistics.SessionCount != 1 {
		t.Errorf("session count = %d, want 1", p.Statistics.SessionCount)
	}
	if p.Statistics.WordsToday != 600 {
		t.Errorf("words today = %d, want 600", p.Statistics.WordsToday)
	}
	if !p.UpdatedAt.After(before) && !p.UpdatedAt.Equal(before) {
		t.Error("adding a session should touch the project")
	}
}
