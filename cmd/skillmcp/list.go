package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillstack/skillmcp/pkg/presenter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := buildStore(ctx, cfg)
		if err != nil {
			return err
		}

		snapshot := store.SkillIndex()
		if snapshot.Len() == 0 {
			presenter.Info("No skills found in " + cfg.SkillsDir)
			return nil
		}

		presenter.Section(fmt.Sprintf("Skills (%d)", snapshot.Len()))
		for i := range snapshot.Skills {
			meta := &snapshot.Skills[i]
			line := fmt.Sprintf("%-24s %s", meta.Name, meta.Description)
			if meta.HasSubSkills() {
				line += fmt.Sprintf(" [%s]", strings.Join(meta.SubSkillNames(), ", "))
			}
			presenter.Info(line)
		}

		if snapshot.HasErrors() {
			presenter.Separator()
			for _, msg := range snapshot.ValidationErrors {
				presenter.Warning(msg)
			}
		}
		return nil
	},
}
