package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/portfolio-optimizer/internal/cli"
	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/config"
	"github.com/Veraticus/portfolio-optimizer/internal/engine"
	"github.com/Veraticus/portfolio-optimizer/internal/workbook"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <bulk-file.xlsx>",
		Short: "Show the portfolios and products found in a bulk file",
		Long: `Read a bulk file without changing anything and report which worksheets were
used, how every portfolio name was attributed to a product and tier, which
portfolios were skipped, and which products will need a price.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(time.Now())
			if err != nil && !errors.Is(err, common.ErrMissingConfig) {
				return err
			}
			if settings == nil {
				settings = &config.Settings{}
			}

			cfg, err := engineConfig(settings)
			if err != nil {
				return err
			}

			input := config.ExpandPath(args[0])
			doc, err := workbook.Read(input)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Could not read %s", input), err)
			}

			plan, err := engine.NewWithConfig(cfg).Prepare(doc)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("%s is not a usable bulk file: %v", input, err), err)
			}

			return cli.RenderPlan(cmd.OutOrStdout(), plan)
		},
	}
}
