package main

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/quillworks/quill/internal/backup"
	"github.com/quillworks/quill/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list, restore, and prune backup archives",
}

var (
	flagBackupDesc  string
	flagBackupType  string
	flagPruneBefore string
	flagListProject string
)

func init() {
	backupCreateCmd.Flags().StringVarP(&flagBackupDesc, "description", "d", "", "free-text description")
	backupCreateCmd.Flags().StringVar(&flagBackupType, "type", "manual", "backup type (manual, auto, scheduled)")

	backupListCmd.Flags().StringVar(&flagListProject, "project", "", "filter to one project id")

	backupPruneCmd.Flags().StringVar(&flagPruneBefore, "before", "", `cutoff: a date or a phrase like "2 weeks ago"`)

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupDeleteCmd)
	backupCmd.AddCommand(backupPruneCmd)
}

// parseBackupType maps the flag value, defaulting to manual.
func parseBackupType(v string) backup.Type {
	switch backup.Type(v) {
	case backup.TypeManual, backup.TypeAuto, backup.TypeScheduled:
		return backup.Type(v)
	}
	return backup.TypeManual
}

// parseCutoff understands both plain dates and natural phrases like
// "2 weeks ago" or "last monday".
func parseCutoff(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(v, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cutoff %q: %w", v, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("cannot understand cutoff %q", v)
	}
	return r.Time, nil
}

var backupCreateCmd = &cobra.Command{
	Use:   "create <project-id>",
	Short: "Archive a project and its documents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		info, err := a.backups.Create(args[0], flagBackupDesc, parseBackupType(flagBackupType))
		if err != nil {
			fatal(err)
		}
		ui.Println(ui.Pass(fmt.Sprintf("Backup %s (%d bytes)", info.ID, info.SizeBytes)))
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup archives, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		backups, err := a.backups.List(flagListProject)
		if err != nil {
			fatal(err)
		}
		if len(backups) == 0 {
			ui.Println(ui.Muted("No backups found."))
			return
		}
		for _, b := range backups {
			desc := b.Description
			if desc == "" {
				desc = "-"
			}
			ui.Printf("%s  %s  %s  %s  %d bytes\n",
				ui.Accent(b.ID), b.CreatedAt.Format("2006-01-02 15:04:05"),
				string(b.Type), desc, b.SizeBytes)
		}
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <archive-path>",
	Short: "Restore a project and its documents from an archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		id, err := a.backups.Restore(args[0])
		if err != nil {
			fatal(err)
		}
		ui.Println(ui.Pass("Restored project " + id))
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete <backup-id>",
	Short: "Delete one backup archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		ok, err := a.backups.Delete(args[0])
		if err != nil {
			fatal(err)
		}
		if !ok {
			ui.Println(ui.Warn("Backup " + args[0] + " was not found"))
			return
		}
		ui.Println(ui.Pass("Deleted " + args[0]))
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune <project-id>",
	Short: "Delete a project's backups older than a cutoff",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if flagPruneBefore == "" {
			fatal(fmt.Errorf("--before is required"))
		}
		cutoff, err := parseCutoff(flagPruneBefore)
		if err != nil {
			fatal(err)
		}

		a, err := buildApp()
		if err != nil {
			fatal(err)
		}
		defer a.Close()

		deleted, err := a.backups.Prune(args[0], cutoff)
		if err != nil {
			fatal(err)
		}
		if len(deleted) == 0 {
			ui.Println(ui.Muted("Nothing to prune."))
			return
		}
		for _, id := range deleted {
			ui.Println(ui.Pass("Deleted " + id))
		}
	},
}
