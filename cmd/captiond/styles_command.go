package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"captiond/internal/styles"
)

func newStylesCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List available burn-in style presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			resolver, err := styles.Load(cfg.Paths.StylePresetsPath)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(resolver.IDs()))
			for _, id := range resolver.IDs() {
				style, err := resolver.Resolve(id, nil)
				if err != nil {
					return fmt.Errorf("resolve style %q: %w", id, err)
				}
				rows = append(rows, []string{
					id,
					style.Name,
					style.FontFamily,
					strconv.Itoa(style.FontSize),
					style.FontColor,
					style.Position,
					style.Alignment,
				})
			}
			cmd.Println(renderTable(
				[]string{"ID", "Name", "Font", "Size", "Color", "Position", "Alignment"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
