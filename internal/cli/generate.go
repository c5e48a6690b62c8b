package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/greetcard/pkg/artifact"
	"github.com/matzehuels/greetcard/pkg/compose"
	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/photo"
	"github.com/matzehuels/greetcard/pkg/pipeline"
)

// cardFlags are the inputs shared by generate, preview and layout.
type cardFlags struct {
	template string
	fontSize float64
	color    string
	photo    string
	debug    bool
}

func (f *cardFlags) register(cmd *cobra.Command, c *CLI, withPhoto bool) {
	cmd.Flags().StringVarP(&f.template, "template", "t", pipeline.DefaultTemplate, "template id")
	cmd.Flags().Float64VarP(&f.fontSize, "font-size", "s", 0, "font size in px (default: template slot size)")
	cmd.Flags().StringVar(&f.color, "color", "", "text color as #rgb or #rrggbb (default: template slot color)")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "outline the text and photo slots")
	if withPhoto {
		cmd.Flags().StringVar(&f.photo, "photo", "", "photo to place in the template's photo slot")
	}
	_ = cmd.RegisterFlagCompletionFunc("template", c.completeTemplates)
}

// request builds a pipeline request from the flags and the name arguments.
func (f *cardFlags) request(args []string) (pipeline.Request, error) {
	req := pipeline.Request{
		Text:       strings.Join(args, " "),
		TemplateID: f.template,
		FontSize:   f.fontSize,
		Color:      f.color,
		Debug:      f.debug,
	}
	if f.photo == "" {
		return req, nil
	}
	data, err := readPhoto(f.photo)
	if err != nil {
		return req, err
	}
	req.Photo = data
	return req, nil
}

func readPhoto(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read photo")
	}
	if info.Size() > photo.MaxBytes {
		return nil, errors.New(errors.ErrCodeTooLarge, "photo %s is %d bytes, limit is %d", path, info.Size(), photo.MaxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read photo")
	}
	return data, nil
}

type generateOptions struct {
	card   cardFlags
	format string
	out    string
	phone  string
	record bool
}

func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <name...>",
		Short: "Composite a greeting card",
		Long: `Composite a greeting card with the given name and write it to disk.

Without --out the card is stored in the generated directory under a unique
name, exactly as the HTTP API would store it. With --out the card is written
to that path and the format follows its extension unless --format is set.`,
		Example: `  # Default template, stored in ./generated
  greetcard generate "Mrs. Eleanor Vance"

  # Larger red text on another template, written to card.jpg
  greetcard generate -t spring -s 96 --color "#cc0000" -o card.jpg "Mr. Smith"

  # With a photo
  greetcard generate --photo me.png "Ms. Rivera"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args, opts)
		},
	}

	opts.card.register(cmd, c, true)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png or jpeg (default: config render.format)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: generated directory)")
	cmd.Flags().StringVar(&opts.phone, "phone", "", "phone number stored with the greeting record")
	cmd.Flags().BoolVar(&opts.record, "record", false, "record the greeting in MongoDB when configured")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, args []string, opts generateOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	req, err := opts.card.request(args)
	if err != nil {
		return err
	}
	req.Format = opts.format
	req.Phone = opts.phone

	a, err := c.newApp(ctx, cfg, appOptions{record: opts.record, localCache: true})
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Compositing card...")
	spinner.Start()

	if opts.out != "" {
		card, err := writeCard(ctx, a, req, opts.out)
		if err != nil {
			spinner.StopWithError(errors.UserMessage(err))
			return err
		}
		spinner.Stop()
		prog.done("Composited card")
		printSuccess("Card written")
		printFile(opts.out)
		printLayoutStats(card.Layout, false)
		return nil
	}

	art, err := a.runner.Generate(ctx, req)
	if err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		return err
	}
	spinner.Stop()
	prog.done("Composited card")
	printSuccess("Card generated")
	printFile(art.FilePath)
	printKeyValue("URL", StyleLink.Render(art.PublicURL))
	printNewline()
	printNextStep("Serve it", "greetcard serve")
	return nil
}

// writeCard composites req in memory and encodes it to path.
func writeCard(ctx context.Context, a *app, req pipeline.Request, path string) (*compose.Card, error) {
	if req.Format == "" {
		req.Format = formatForPath(path, a.cfg.Render.Format)
	}
	if err := req.Normalize(a.cfg.Text.MaxLen); err != nil {
		return nil, err
	}
	if err := req.RequireText(); err != nil {
		return nil, err
	}
	card, err := a.runner.Compositor.Compose(ctx, compose.Request{
		TemplateID: req.TemplateID,
		Text:       req.Text,
		FontSize:   req.FontSize,
		Color:      req.Color,
		Photo:      req.Photo,
		Format:     artifact.Format(req.Format),
		Debug:      req.Debug,
	})
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := compose.Encode(f, card.Image, artifact.Format(req.Format)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return card, f.Close()
}

// formatForPath picks the format named by the extension of path, or def.
func formatForPath(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return string(artifact.FormatJPEG)
	case ".png":
		return string(artifact.FormatPNG)
	}
	return def
}
