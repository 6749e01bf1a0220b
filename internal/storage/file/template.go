package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/quillworks/quill/internal/events"
	"github.com/quillworks/quill/internal/project"
	"github.com/quillworks/quill/internal/storage"
)

// Placeholder tokens substituted when a template is instantiated.
const (
	placeholderTitle  = "{{TITLE}}"
	placeholderAuthor = "{{AUTHOR}}"
)

// templateDescriptor is the template.yaml metadata file.
type templateDescriptor struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Type        project.Type `yaml:"project_type"`
	CreatedAt   time.Time    `yaml:"created_at"`
}

func (r *Repository) templatePath(templateID string) string {
	return filepath.Join(r.templatesDir, templateID)
}

// SaveAsTemplate captures the project's settings and metadata as a
// reusable template. Identity, statistics, and the author and title are
// stripped; title and author become placeholder tokens.
func (r *Repository) SaveAsTemplate(id, name, description string) (string, error) {
	p, err := r.Load(id)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("project %s not found", id)
	}

	tpl := p.Clone()
	tpl.ID = ""
	tpl.Name = placeholderTitle
	tpl.RootPath = ""
	tpl.LastOpenedAt = nil
	tpl.CreatedAt = time.Time{}
	tpl.UpdatedAt = time.Time{}
	tpl.Metadata.Author = placeholderAuthor
	tpl.Statistics = project.DefaultStatistics()
	tpl.Status = project.StatusDraft

	templateID := uuid.NewString()
	dir := r.templatePath(templateID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create template directory: %w", err)
	}

	desc := templateDescriptor{
		ID:          templateID,
		Name:        name,
		Description: description,
		Type:        p.Type,
		CreatedAt:   time.Now(),
	}
	descData, err := yaml.Marshal(&desc)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("marshal template descriptor: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "template.yaml"), descData, 0o644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write template descriptor: %w", err)
	}

	structData, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("marshal template structure: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "project.json"), structData, 0o644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write template structure: %w", err)
	}
	return templateID, nil
}

// CreateFromTemplate instantiates and persists a new project from a
// template, substituting the title and author placeholders.
func (r *Repository) CreateFromTemplate(templateID, title, author string) (*project.Project, error) {
	data, err := os.ReadFile(filepath.Join(r.templatePath(templateID), "project.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("template %s not found", templateID)
		}
		return nil, fmt.Errorf("read template structure: %w", err)
	}

	replacer := strings.NewReplacer(
		placeholderTitle, escapeJSONString(title),
		placeholderAuthor, escapeJSONString(author),
	)
	filled := replacer.Replace(string(data))

	var p project.Project
	if err := json.Unmarshal([]byte(filled), &p); err != nil {
		return nil, fmt.Errorf("parse template structure: %w", err)
	}
	// The decode regenerated the blank id; the rest of the identity is
	// stamped fresh here.
	now := time.Now()
	p.Name = title
	p.CreatedAt = now
	p.UpdatedAt = now
	p.LastOpenedAt = nil
	p.RootPath = ""
	p.Statistics = project.DefaultStatistics()

	if err := r.Save(&p); err != nil {
		return nil, err
	}
	events.Publish(r.publisher, r.logger, events.Event{
		Kind: events.ProjectCreated, ProjectID: p.ID, Detail: "template=" + templateID,
	})
	return &p, nil
}

// GetTemplate returns one template's descriptor, or nil when it does
// not exist.
func (r *Repository) GetTemplate(templateID string) (*storage.TemplateInfo, error) {
	data, err := os.ReadFile(filepath.Join(r.templatePath(templateID), "template.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read template descriptor: %w", err)
	}
	var desc templateDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse template descriptor: %w", err)
	}
	return &storage.TemplateInfo{
		ID:          desc.ID,
		Name:        desc.Name,
		Description: desc.Description,
		Type:        desc.Type,
		CreatedAt:   desc.CreatedAt,
	}, nil
}

// escapeJSONString escapes a value destined for the inside of a JSON
// string literal in the template text.
func escapeJSONString(v string) string {
	b, _ := json.Marshal(v)
	return strings.Trim(string(b), `"`)
}

// ListTemplates returns template descriptors sorted by creation time
// descending. Unreadable templates are skipped with a log line.
func (r *Repository) ListTemplates() ([]storage.TemplateInfo, error) {
	entries, err := os.ReadDir(r.templatesDir)
	if err != nil {
		return nil, fmt.Errorf("read templates directory: %w", err)
	}

	var templates []storage.TemplateInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.templatesDir, entry.Name(), "template.yaml"))
		if err != nil {
			r.logger.Printf("skipping template %s: %v", entry.Name(), err)
			continue
		}
		var desc templateDescriptor
		if err := yaml.Unmarshal(data, &desc); err != nil {
			r.logger.Printf("skipping corrupt template %s: %v", entry.Name(), err)
			continue
		}
		templates = append(templates, storage.TemplateInfo{
			ID:          desc.ID,
			Name:        desc.Name,
			Description: desc.Description,
			Type:        desc.Type,
			CreatedAt:   desc.CreatedAt,
		})
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].CreatedAt.After(templates[j].CreatedAt)
	})
	return templates, nil
}

// DeleteTemplate removes the template's directory. Returns false when it
// did not exist.
func (r *Repository) DeleteTemplate(templateID string) (bool, error) {
	dir := r.templatePath(templateID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("delete template %s: %w", templateID, err)
	}
	return true, nil
}
