package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/layout"
	"github.com/matzehuels/greetcard/pkg/pipeline"
)

type previewOptions struct {
	card        cardFlags
	out         string
	noCache     bool
	interactive bool
}

func (c *CLI) previewCommand() *cobra.Command {
	opts := previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview [name...]",
		Short: "Render a live preview PNG",
		Long: `Render the preview a browser would draw for the given name, using the same
layout as the compositor, and write it as PNG. Without a name the bare
template is drawn.

With --interactive the name can be edited in the terminal while the wrapped
lines, font size and positions update on every keystroke. Enter writes the
preview.`,
		Example: `  # Preview the default template
  greetcard preview "Mrs. Eleanor Vance" -o preview.png

  # Edit interactively with slot outlines
  greetcard preview -i --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args, opts)
		},
	}

	opts.card.register(cmd, c, true)
	cmd.Flags().StringVarP(&opts.out, "out", "o", "preview.png", "output PNG file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render even when a cached preview exists")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "edit the name in a terminal UI")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, args []string, opts previewOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	req, err := opts.card.request(args)
	if err != nil {
		return err
	}

	a, err := c.newApp(ctx, cfg, appOptions{noCache: opts.noCache, localCache: true})
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	if opts.interactive {
		accepted, err := c.editInteractively(ctx, a, &req)
		if err != nil || !accepted {
			return err
		}
	}

	prog := newProgress(c.Logger)
	data, cached, err := a.runner.PreviewWithCacheInfo(ctx, req)
	if err != nil {
		return err
	}
	res, err := a.runner.Layout(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	prog.done("Rendered preview")

	printSuccess("Preview written")
	printFile(opts.out)
	printLayoutStats(res, cached)
	return nil
}

// editInteractively runs the live preview UI and copies the accepted text
// and font size into req.
func (c *CLI) editInteractively(ctx context.Context, a *app, req *pipeline.Request) (bool, error) {
	id := req.TemplateID
	if id == "" {
		id = pipeline.DefaultTemplate
	}
	desc, err := a.templates.Descriptor(ctx, id)
	if err != nil {
		return false, err
	}

	compute := func(text string, fontSize float64) (layout.Result, error) {
		r := *req
		r.Text, r.FontSize = text, fontSize
		return a.runner.Layout(ctx, r)
	}
	model := NewLivePreviewModel(desc.ID, req.Text, req.FontSize, desc.Meta.TextSlot.FontSize, a.cfg.Text.MaxLen, compute)

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return false, fmt.Errorf("live preview: %w", err)
	}
	m := final.(LivePreviewModel)
	if !m.Accepted {
		printInfo("Preview cancelled")
		return false, nil
	}
	if m.Err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidInput, m.Err, "invalid name")
	}
	req.Text, req.FontSize = m.Text, m.FontSize
	return true, nil
}
