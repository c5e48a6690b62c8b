package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/greetcard/pkg/record"
)

func (c *CLI) recordsCommand() *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List recently recorded greetings",
		Long:  `List the most recent greetings recorded in MongoDB. Requires MONGODB_URI or [mongo] uri in the config.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Mongo.URI == "" {
				printWarning("Greeting records are disabled")
				printNextStep("Enable them with", "MONGODB_URI=mongodb://localhost:27017 greetcard serve")
				return nil
			}

			ctx := cmd.Context()
			rec, err := record.NewMongoRecorder(ctx, cfg.Mongo.Record())
			if err != nil {
				return err
			}
			defer rec.Close(ctx)

			greetings, err := rec.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(greetings) == 0 {
				printInfo("No greetings recorded yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), recordsTable(greetings).Render())
			return nil
		},
	}

	cmd.Flags().Int64VarP(&limit, "limit", "n", 20, "number of greetings to show")
	return cmd
}

func recordsTable(greetings []record.Greeting) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(greetings))
	for i, g := range greetings {
		rows[i] = []string{g.CreatedAt.Local().Format("2006-01-02 15:04"), g.Name, g.Phone, g.ImageURL}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Created", "Name", "Phone", "Card").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleDim
			default:
				return StyleValue
			}
		})
}
