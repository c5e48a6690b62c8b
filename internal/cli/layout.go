package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type layoutOptions struct {
	card    cardFlags
	jsonOut bool
}

func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOptions{}

	cmd := &cobra.Command{
		Use:   "layout [name...]",
		Short: "Print the text layout for a template",
		Long: `Print how a name is wrapped, sized and positioned inside a template's text
slot. Both the compositor and the preview renderer draw exactly these lines at
exactly these positions.`,
		Example: `  greetcard layout "Mrs. Eleanor Vance of Springfield"
  greetcard layout -t spring -s 96 --json "Mr. Smith"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args, opts)
		},
	}

	opts.card.register(cmd, c, false)
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the layout as JSON")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, args []string, opts layoutOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	req, err := opts.card.request(args)
	if err != nil {
		return err
	}
	a, err := c.newApp(ctx, cfg, appOptions{localCache: true})
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	res, err := a.runner.Layout(ctx, req)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(cmd.OutOrStdout(), layoutTable(res).Render())
	printKeyValue("Font size", fmt.Sprintf("%vpx", res.FontSize))
	printKeyValue("Line height", fmt.Sprintf("%vpx", res.LineHeight))
	printKeyValue("Start Y", fmt.Sprintf("%v", res.StartY))
	printKeyValue("Anchor", string(res.Anchor))
	printKeyValue("Color", res.Color)
	return nil
}
