package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mia/internal/core"
)

func categoriesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tipo, _ := cmd.Flags().GetString("tipo")

			app, _, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer app.Close()

			cats, err := app.Ledger.ListCategories(cmd.Context(), core.TxType(strings.ToLower(tipo)))
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintln(out, SubtleStyle.Render("Nenhuma categoria cadastrada."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				HeaderStyle.Render("Nome"),
				HeaderStyle.Render("Tipo"),
				HeaderStyle.Render("Cor"),
				HeaderStyle.Render("Descrição"))
			for _, c := range cats {
				name := c.Name
				if !c.Active {
					name = SubtleStyle.Render(name + " (inativa)")
				}
				desc := c.Description
				if desc == "" {
					desc = SubtleStyle.Render("-")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, c.Type, c.Color, desc)
			}
			return nil
		},
	}
	cmd.Flags().String("tipo", "", "only categories of this type (receita or despesa)")
	return cmd
}
