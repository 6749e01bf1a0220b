package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/quillworks/quill/internal/project"
	"github.com/quillworks/quill/internal/ui"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create, inspect, and manage writing projects",
}

var (
	flagProjectType     string
	flagProjectAuthor   string
	flagProjectGenre    string
	flagProjectPath     string
	flagProjectTemplate string
	flagInteractive     bool

	flagListStatus string
	flagListType   string
	flagListSearch string
	flagListRecent int

	flagExportFormat string
	flagImportFormat string
)

func init() {
	projectNewCmd.Flags().StringVar(&flagProjectType, "type", "novel", "project type (novel, short_story, novella, script, poetry, essay, other)")
	projectNewCmd.Flags().StringVar(&flagProjectAuthor, "author", "", "author name")
	projectNewCmd.Flags().StringVar(&flagProjectGenre, "genre", "", "genre")
	projectNewCmd.Flags().StringVar(&flagProjectPath, "path", "", "custom root directory for the project files")
	projectNewCmd.Flags().StringVar(&flagProjectTemplate, "template", "", "instantiate from a saved template id")
	projectNewCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "prompt for details interactively")

	projectListCmd.Flags().StringVar(&flagListStatus, "status", "", "filter by status")
	projectListCmd.Flags().StringVar(&flagListType, "type", "", "filter by type")
	projectListCmd.Flags().StringVar(&flagListSearch, "search", "", "case-insensitive search over name, description, tags")
	projectListCmd.Flags().IntVar(&flagListRecent, "recent", 0, "show the N most recently opened projects")

	projectExportCmd.Flags().StringVar(&flagExportFormat, "format", "json", "export format")
	projectImportCmd.Flags().StringVar(&flagImportFormat, "format", "json", "import format")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectOpenCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectCopyCmd)
	projectCmd.AddCommand(projectExportCmd)
	projectCmd.AddCommand(projectImportCmd)
	projectCmd.AddCommand(projectMigrateCmd)
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		author := flagProjectAuthor
		if author == "" {
			author = a.cfg.DefaultAuthor
		}
		genre := flagProjectGenre
		if genre == "" {
			genre = a.cfg.DefaultGenre
		}
		typ := flagProjectType

		if flagInteractive {
			if err := runProjectWizard(&name, &typ, &author, &genre); err != nil {
				fatal(err)
			}
		}
		if name == "" {
			fatal(fmt.Errorf("project name is required"))
		}

		if flagProjectTemplate != "" {
			p, err := a.repo.CreateFromTemplate(flagProjectTemplate, name, author)
			if err != nil {
				fatal(err)
			}
			ui.Println(ui.Pass(fmt.Sprintf("Created %q from template (%s)", p.Name, p.ID)))
			return
		}

		p := project.New(name, project.ParseType(typ))
		p.Metadata.Author = author
		p.Metadata.Genre = genre
		p.RootPath = flagProjectPath
		if problems := p.Validate(); len(problems) > 0 {
			fatal(fmt.Errorf("invalid project: %s", strings.Join(problems, "; ")))
		}
		if err := a.repo.Save(p); err != nil {
			fatal(err)
		}
		ui.Println(ui.Pass(fmt.Sprintf("Created %q (%s)", p.Name, p.ID)))
	},
}

// runProjectWizard collects project details with an interactive form.
func runProjectWizard(name, typ, author, genre *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(name).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("name is required")
					}
					if len(v) > 200 {
						return fmt.Errorf("name cannot exceed 200 characters")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Project type").
				Options(
					huh.NewOption("Novel", "novel"),
					huh.NewOption("Short story", "short_story"),
					huh.NewOption("Novella", "novella"),
					huh.NewOption("Script", "script"),
					huh.NewOption("Poetry", "poetry"),
					huh.NewOption("Essay", "essay"),
					huh.NewOption("Other", "other"),
				).
				Value(typ),
			huh.NewInput().Title("Author").Value(author),
			huh.NewInput().Title("Genre").Value(genre),
		),
	)
	return form.Run()
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		var projects []*project.Project
		switch {
		case flagListRecent > 0:
			projects, err = a.repo.Recent(flagListRecent)
		case flagListSearch != "":
			projects, err = a.repo.Search(flagListSearch)
		case flagListStatus != "":
			projects, err = a.repo.ListByStatus(project.ParseStatus(flagListStatus))
		case flagListType != "":
			projects, err = a.repo.ListByType(project.ParseType(flagListType))
		default:
			projects, err = a.repo.ListAll()
		}
		if err != nil {
			fatal(err)
		}

		if len(projects) == 0 {
			ui.Println(ui.Muted("No projects found."))
			return
		}
		for _, p := range projects {
			status := string(p.Status)
			ui.Printf("%s  %s  %s  %s  %d words\n",
				ui.Accent(p.ID), p.Name, ui.Muted(string(p.Type)), status, p.Statistics.TotalWords)
		}
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project in detail",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		p, err := a.repo.Load(args[0])
		if err != nil {
			fatal(err)
		}
		if p == nil {
			fatal(fmt.Errorf("project %s not found", args[0]))
		}

		ui.Println(ui.Title(p.Name))
		ui.Printf("  ID:        %s\n", p.ID)
		ui.Printf("  Type:      %s\n", p.Type)
		ui.Printf("  Status:    %s\n", p.Status)
		if p.Metadata.Author != "" {
			ui.Printf("  Author:    %s\n", p.Metadata.Author)
		}
		if p.Metadata.Genre != "" {
			ui.Printf("  Genre:     %s\n", p.Metadata.Genre)
		}
		if p.RootPath != "" {
			ui.Printf("  Root:      %s\n", p.RootPath)
		}
		ui.Printf("  Words:     %d / %d (%.1f%%)\n",
			p.Statistics.TotalWords, p.Metadata.TargetWordCount, p.ProgressPercentage())
		ui.Printf("  Created:   %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
		ui.Printf("  Updated:   %s\n", p.UpdatedAt.Format("2006-01-02 15:04"))
		if p.LastOpenedAt != nil {
			ui.Printf("  Opened:    %s\n", p.LastOpenedAt.Format("2006-01-02 15:04"))
		}
		if next := project.NextStatuses(p.Status); len(next) > 0 {
			parts := make([]string, len(next))
			for i, s := range next {
				parts[i] = string(s)
			}
			ui.Printf("  Can move to: %s\n", ui.Muted(strings.Join(parts, ", ")))
		}
	},
}

var projectOpenCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Mark a project as opened",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		ok, err := a.repo.UpdateLastOpened(args[0])
		if err != nil {
			fatal(err)
		}
		if !ok {
			fatal(fmt.Errorf("project %s not found", args[0]))
		}
		ui.Println(ui.Pass("Opened " + args[0]))
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project's managed files",
	Long: `Delete removes the project's files from the managed directory and its
index entries. A custom root directory set by you is left untouched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		ok, err := a.repo.Delete(args[0])
		if err != nil {
			fatal(err)
		}
		if !ok {
			ui.Println(ui.Warn("Project " + args[0] + " was not found"))
			os.Exit(1)
		}
		ui.Println(ui.Pass("Deleted " + args[0]))
	},
}

var projectCopyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Duplicate a project under a fresh identity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		p, err := a.repo.Load(args[0])
		if err != nil {
			fatal(err)
		}
		if p == nil {
			fatal(fmt.Errorf("project %s not found", args[0]))
		}

		dup := p.Copy()
		if err := a.repo.Save(dup); err != nil {
			fatal(err)
		}
		ui.Println(ui.Pass(fmt.Sprintf("Copied to %q (%s)", dup.Name, dup.ID)))
	},
}

var projectExportCmd = &cobra.Command{
	Use:   "export <id> <path>",
	Short: "Export a project to a single file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		ok, err := a.repo.Export(args[0], args[1], flagExportFormat)
		if err != nil {
			fatal(err)
		}
		if !ok {
			fatal(fmt.Errorf("project %s not found", args[0]))
		}
		ui.Println(ui.Pass("Exported to " + args[1]))
	},
}

var projectImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a previously exported project file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		p, err := a.repo.Import(args[0], flagImportFormat)
		if err != nil {
			fatal(err)
		}
		ui.Println(ui.Pass(fmt.Sprintf("Imported %q (%s)", p.Name, p.ID)))
	},
}

var projectMigrateCmd = &cobra.Command{
	Use:   "migrate <id>",
	Short: "Upgrade a stored project to the current format version",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		ok, err := a.repo.Migrate(args[0], "")
		if err != nil {
			fatal(err)
		}
		if !ok {
			fatal(fmt.Errorf("project %s not found", args[0]))
		}
		ui.Println(ui.Pass("Migrated " + args[0] + " to format " + project.FormatVersion))
	},
}
