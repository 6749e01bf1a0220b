package project

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Metadata holds the descriptive fields of a project. It is owned by
// exactly one Project; the project name itself lives on the Project and is
// not duplicated here.
type Metadata struct {
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Description string `json:"description"`

	// Label sets are case-normalized to lowercase, trimmed, and
	// deduplicated on insert. Use the Add/Remove helpers.
	Tags               []string `json:"tags"`
	Keywords           []string `json:"keywords"`
	Themes             []string `json:"themes"`
	InspirationSources []string `json:"inspiration_sources"`

	TargetWordCount int        `json:"target_word_count"`
	Language        Language   `json:"language"`
	CopyrightInfo   string     `json:"copyright_info"`
	Priority        Priority   `json:"priority"`
	Visibility      Visibility `json:"visibility"`

	TargetAudience string `json:"target_audience"`
	ContentRating  string `json:"content_rating"`
	SeriesInfo     string `json:"series_info,omitempty"`

	PublicationStatus string     `json:"publication_status"`
	Publisher         string     `json:"publisher"`
	PublicationDate   *time.Time `json:"publication_date,omitempty"`
	ISBN              string     `json:"isbn"`

	// CustomFields is an open-ended extensibility point for callers.
	CustomFields map[string]any `json:"custom_fields"`
}

// DefaultMetadata returns metadata with field defaults applied.
func DefaultMetadata() Metadata {
	return Metadata{
		TargetWordCount:   80000,
		Language:          LanguageEnUS,
		Priority:          PriorityNormal,
		Visibility:        VisibilityPrivate,
		PublicationStatus: "unpublished",
		CustomFields:      map[string]any{},
	}
}

// normalizeLabel prepares a label for set membership.
func normalizeLabel(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func addLabel(set []string, v string) []string {
	v = normalizeLabel(v)
	if v == "" {
		return set
	}
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}

func removeLabel(set []string, v string) []string {
	v = normalizeLabel(v)
	out := set[:0]
	for _, existing := range set {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}

func hasLabel(set []string, v string) bool {
	v = normalizeLabel(v)
	for _, existing := range set {
		if existing == v {
			return true
		}
	}
	return false
}

// AddTag inserts a tag, normalized and deduplicated.
func (m *Metadata) AddTag(tag string) { m.Tags = addLabel(m.Tags, tag) }

// RemoveTag removes a tag if present.
func (m *Metadata) RemoveTag(tag string) { m.Tags = removeLabel(m.Tags, tag) }

// HasTag reports whether the tag is present.
func (m *Metadata) HasTag(tag string) bool { return hasLabel(m.Tags, tag) }

// AddKeyword inserts a keyword, normalized and deduplicated.
func (m *Metadata) AddKeyword(kw string) { m.Keywords = addLabel(m.Keywords, kw) }

// RemoveKeyword removes a keyword if present.
func (m *Metadata) RemoveKeyword(kw string) { m.Keywords = removeLabel(m.Keywords, kw) }

// AddTheme inserts a theme, normalized and deduplicated.
func (m *Metadata) AddTheme(theme string) { m.Themes = addLabel(m.Themes, theme) }

// RemoveTheme removes a theme if present.
func (m *Metadata) RemoveTheme(theme string) { m.Themes = removeLabel(m.Themes, theme) }

// AddInspirationSource inserts an inspiration source.
func (m *Metadata) AddInspirationSource(src string) {
	m.InspirationSources = addLabel(m.InspirationSources, src)
}

// RemoveInspirationSource removes an inspiration source if present.
func (m *Metadata) RemoveInspirationSource(src string) {
	m.InspirationSources = removeLabel(m.InspirationSources, src)
}

// SetCustomField stores an open-ended custom field value.
func (m *Metadata) SetCustomField(key string, value any) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if m.CustomFields == nil {
		m.CustomFields = map[string]any{}
	}
	m.CustomFields[key] = value
}

// CustomField reads a custom field, returning ok=false when absent.
func (m *Metadata) CustomField(key string) (any, bool) {
	v, ok := m.CustomFields[strings.TrimSpace(key)]
	return v, ok
}

// RemoveCustomField deletes a custom field if present.
func (m *Metadata) RemoveCustomField(key string) {
	delete(m.CustomFields, strings.TrimSpace(key))
}

// ApplyTypeTarget resets the target word count to the default for the
// given project type.
func (m *Metadata) ApplyTypeTarget(t Type) {
	m.TargetWordCount = t.DefaultTargetWordCount()
}

// SearchableText aggregates every textual field into one lowercase blob
// for substring search.
func (m *Metadata) SearchableText() string {
	parts := []string{
		m.Author, m.Genre, m.Description, m.CopyrightInfo,
		m.TargetAudience, m.ContentRating, m.SeriesInfo,
		m.Publisher, m.ISBN,
		strings.Join(m.Tags, " "),
		strings.Join(m.Keywords, " "),
		strings.Join(m.Themes, " "),
		strings.Join(m.InspirationSources, " "),
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.ToLower(strings.Join(nonEmpty, " "))
}

// Validate returns the ordered list of metadata validation problems.
// An empty list means the metadata is valid.
func (m *Metadata) Validate() []string {
	var errs []string

	if m.TargetWordCount < 0 {
		errs = append(errs, "target word count cannot be negative")
	} else if m.TargetWordCount > 10000000 {
		errs = append(errs, "target word count is too large (max 10000000)")
	}
	if len(m.Description) > 5000 {
		errs = append(errs, "description is too long (max 5000 characters)")
	}
	if len(m.Author) > 100 {
		errs = append(errs, "author name is too long (max 100 characters)")
	}
	if len(m.Tags) > 50 {
		errs = append(errs, fmt.Sprintf("too many tags (max 50, got %d)", len(m.Tags)))
	}
	if len(m.Keywords) > 100 {
		errs = append(errs, fmt.Sprintf("too many keywords (max 100, got %d)", len(m.Keywords)))
	}
	if m.ISBN != "" && !validISBN(m.ISBN) {
		errs = append(errs, "isbn is not a valid ISBN-10 or ISBN-13")
	}

	return errs
}

// validISBN checks the shape of an ISBN-10 or ISBN-13 after stripping
// hyphens and spaces. It does not verify the check digit.
func validISBN(isbn string) bool {
	clean := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	switch len(clean) {
	case 10:
		for _, r := range clean[:9] {
			if r < '0' || r > '9' {
				return false
			}
		}
		last := clean[9]
		return (last >= '0' && last <= '9') || last == 'X' || last == 'x'
	case 13:
		for _, r := range clean {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// UnmarshalJSON decodes metadata on top of the defaults, so fields absent
// from older files keep sensible values. A malformed publication date is
// dropped rather than failing the load.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type alias Metadata
	a := alias(DefaultMetadata())
	aux := struct {
		*alias
		PublicationDate json.RawMessage `json:"publication_date"`
	}{alias: &a}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.PublicationDate) > 0 && string(aux.PublicationDate) != "null" {
		var raw string
		if err := json.Unmarshal(aux.PublicationDate, &raw); err == nil {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				a.PublicationDate = &ts
			}
		}
	}
	if a.CustomFields == nil {
		a.CustomFields = map[string]any{}
	}
	*m = Metadata(a)
	return nil
}

// Clone returns a deep copy of the metadata.
func (m *Metadata) Clone() Metadata {
	out := *m
	out.Tags = append([]string(nil), m.Tags...)
	out.Keywords = append([]string(nil), m.Keywords...)
	out.Themes = append([]string(nil), m.Themes...)
	out.InspirationSources = append([]string(nil), m.InspirationSources...)
	out.CustomFields = make(map[string]any, len(m.CustomFields))
	for k, v := range m.CustomFields {
		out.CustomFields[k] = v
	}
	if m.PublicationDate != nil {
		ts := *m.PublicationDate
		out.PublicationDate = &ts
	}
	return out
}
