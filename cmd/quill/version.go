package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillworks/quill/internal/ui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Create, list, and restore document version snapshots",
}

var (
	flagVersionDesc   string
	flagVersionAuthor string
	flagVersionFile   string
	flagRestoreOut    string
)

func init() {
	versionCreateCmd.Flags().StringVarP(&flagVersionDesc, "description", "d", "", "free-text description")
	versionCreateCmd.Flags().StringVar(&flagVersionAuthor, "author", "", "author name")
	versionCreateCmd.Flags().StringVar(&flagVersionFile, "from-file", "", "snapshot this file's content instead of the stored document")

	versionRestoreCmd.Flags().StringVarP(&flagRestoreOut, "out", "o", "", "write the content to a file instead of stdout")

	versionCmd.AddCommand(versionCreateCmd)
	versionCmd.AddCommand(versionListCmd)
	versionCmd.AddCommand(versionRestoreCmd)
}

var versionCreateCmd = &cobra.Command{
	Use:   "create <document-id>",
	Short: "Snapshot a document's current content",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		var content string
		if flagVersionFile != "" {
			data, err := os.ReadFile(flagVersionFile)
			if err != nil {
				fatal(err)
			}
			content = string(data)
		} else {
			doc, err := a.docs.Load(args[0])
			if err != nil {
				fatal(err)
			}
			if doc == nil {
				fatal(fmt.Errorf("document %s not found", args[0]))
			}
			content = doc.Content
		}

		info, err := a.versions.Create(args[0], content, flagVersionDesc, flagVersionAuthor)
		if err != nil {
			fatal(err)
		}
		ui.Println(ui.Pass(fmt.Sprintf("Version %d (%s)", info.Number, info.ID)))
	},
}

var versionListCmd = &cobra.Command{
	Use:   "list <document-id>",
	Short: "List a document's versions, newest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		versions, err := a.versions.List(args[0])
		if err != nil {
			fatal(err)
		}
		if len(versions) == 0 {
			ui.Println(ui.Muted("No versions found."))
			return
		}
		for _, v := range versions {
			desc := v.Description
			if desc == "" {
				desc = "-"
			}
			ui.Printf("v%-3d  %s  %s  %s\n",
				v.Number, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Author, desc)
		}
	},
}

var versionRestoreCmd = &cobra.Command{
	Use:   "restore <version-id>",
	Short: "Print or write a version's stored content",
	Long: `Restore prints the stored content of a version. It does not write the
content back into the live document; redirect it or use --out, then save
the document explicitly.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		content, err := a.versions.Restore(args[0])
		if err != nil {
			fatal(err)
		}
		if flagRestoreOut != "" {
			if err := os.WriteFile(flagRestoreOut, []byte(content), 0o644); err != nil {
				fatal(err)
			}
			ui.Println(ui.Pass("Wrote " + flagRestoreOut))
			return
		}
		fmt.Print(content)
	},
}
