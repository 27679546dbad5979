package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillstack/skillmcp/pkg/presenter"
	"github.com/skillstack/skillmcp/pkg/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the skill library for structural problems",
	Long: `Validate every skill: manifest errors, missing SKILL.md files, dangling
sub-skill references, and quality warnings. Exits non-zero when errors
are found.`,
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

		result := validation.ValidateAll(ctx, store)

		presenter.Section(fmt.Sprintf("Validated %d skills", result.SkillsChecked))
		for _, msg := range result.Warnings {
			presenter.Warning(msg)
		}
		if result.Valid {
			presenter.Success("All skills valid")
			return nil
		}
		for _, msg := range result.Errors {
			presenter.Error(fmt.Errorf("%s", msg), "")
		}
		return validation.AsError(result)
	},
}
