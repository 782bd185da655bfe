package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newTranslateCmd(a *app) *cobra.Command {
	var (
		locale     string
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "translate [file|-]",
		Short: "Translate the marked phrases of a file or stdin",
		Example: `  bossanova translate --locale fr_FR page.html
  echo 'Hello ^^[world]^^!' | bossanova translate --locale pt_BR`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			buffer, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			t, _, closeStore, err := a.translator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if locale == "" {
				locale = a.cfg.Translate.DefaultLocale
			}
			_, err = io.WriteString(cmd.OutOrStdout(), t.Run(cmd.Context(), string(buffer), locale, clearCache))
			return err
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "target locale; defaults to LOCALE")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "reload the dictionary from its file, bypassing the shared cache")
	return cmd
}
