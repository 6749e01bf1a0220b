package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillworks/quill/internal/ui"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Save and manage reusable project templates",
}

var (
	flagTemplateName string
	flagTemplateDesc string
)

func init() {
	templateSaveCmd.Flags().StringVar(&flagTemplateName, "name", "", "template name (required)")
	templateSaveCmd.Flags().StringVarP(&flagTemplateDesc, "description", "d", "", "free-text description")

	templateCmd.AddCommand(templateSaveCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateDeleteCmd)
}

var templateSaveCmd = &cobra.Command{
	Use:   "save <project-id>",
	Short: "Capture a project's structure as a template",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if flagTemplateName == "" {
			fatal(fmt.Errorf("--name is required"))
		}
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		id, err := a.repo.SaveAsTemplate(args[0], flagTemplateName, flagTemplateDesc)
		if err != nil {
			fatal(err)
		}
		ui.Println(ui.Pass(fmt.Sprintf("Saved template %q (%s)", flagTemplateName, id)))
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		templates, err := a.repo.ListTemplates()
		if err != nil {
			fatal(err)
		}
		if len(templates) == 0 {
			ui.Println(ui.Muted("No templates found."))
			return
		}
		for _, t := range templates {
			desc := t.Description
			if desc == "" {
				desc = "-"
			}
			ui.Printf("%s  %s  %s  %s\n",
				ui.Accent(t.ID), t.Name, ui.Muted(string(t.Type)), desc)
		}
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <template-id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		ok, err := a.repo.DeleteTemplate(args[0])
		if err != nil {
			fatal(err)
		}
		if !ok {
			ui.Println(ui.Warn("Template " + args[0] + " was not found"))
			return
		}
		ui.Println(ui.Pass("Deleted " + args[0]))
	},
}
