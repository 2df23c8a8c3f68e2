package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mia/internal/core"
	"mia/internal/present"
)

func summaryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard for a period",
		Long: `Aggregate the ledger for the selected period and print the stat cards,
the recent transactions and the side widgets.

Periods: dia, semana, mes, ano. Any other value shows every transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, _ := cmd.Flags().GetString("period")
			asJSON, _ := cmd.Flags().GetBool("json")

			app, _, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer app.Close()

			view, err := app.Dashboard.Build(cmd.Context(), core.ParsePeriod(period))
			if err != nil {
				return fmt.Errorf("failed to build dashboard: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			renderSummary(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().StringP("period", "p", string(core.DefaultPeriod), "aggregation period")
	cmd.Flags().Bool("json", false, "print the view as JSON")
	return cmd
}

func renderSummary(w io.Writer, v present.View) {
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s · %s", v.UserName, v.PeriodLabel)))

	cards := make([]string, 0, len(v.Cards))
	for _, c := range v.Cards {
		cards = append(cards, CardStyle.Render(renderCard(c)))
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	fmt.Fprintln(w)

	fmt.Fprintln(w, BoldStyle.Render(v.RecentTitle))
	if len(v.Recent) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render(v.EmptyMessage))
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			HeaderStyle.Render("Data"),
			HeaderStyle.Render("Descrição"),
			HeaderStyle.Render("Categoria"),
			HeaderStyle.Render("Valor"))
		for _, it := range v.Recent {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Date, it.Description, it.Category, amountStyle(it.Type).Render(it.Amount))
		}
		_ = tw.Flush()
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Mercado: %d itens com estoque baixo\n", v.LowStock)
	overdue := fmt.Sprintf("Dívidas: %d vencidas (%s)", v.OverdueDebts, v.OverdueTotal)
	if v.OverdueDebts > 0 {
		overdue = WarningStyle.Render(overdue)
	}
	fmt.Fprintln(w, overdue)
	vehicles := fmt.Sprintf("Veículos: %d", v.Vehicles)
	if v.FirstVehicle != "" {
		vehicles += " (" + v.FirstVehicle + ")"
	}
	fmt.Fprintln(w, vehicles)
}

func renderCard(c present.StatCard) string {
	lines := []string{SubtleStyle.Render(c.Title), BoldStyle.Render(c.Value)}
	if c.Change != "" {
		lines = append(lines, changeStyle(c.ChangeType).Render(c.Change))
	}
	if c.Badge != nil {
		lines = append(lines, healthStyle(c.Badge.Status).Render(c.Badge.Label+": "+c.Badge.Text))
	}
	return strings.Join(lines, "\n")
}

func changeStyle(t present.ChangeType) lipgloss.Style {
	switch t {
	case present.Positive:
		return SuccessStyle
	case present.Negative:
		return ErrorStyle
	}
	return SubtleStyle
}

func healthStyle(h present.Health) lipgloss.Style {
	switch h {
	case present.Good:
		return SuccessStyle
	case present.Warning:
		return WarningStyle
	}
	return ErrorStyle
}

func amountStyle(txType string) lipgloss.Style {
	if txType == "income" {
		return SuccessStyle
	}
	return ErrorStyle
}
