package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/pipeline"
	"github.com/matzehuels/greetcard/pkg/template"
)

func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Inspect and edit card templates",
		Long: `Inspect and edit card templates.

A template is an image (<id>.png, .jpg or .jpeg) in the template directory,
optionally with slot metadata in <id>.json next to it. Templates without
metadata use the built-in default slots.`,
	}

	cmd.AddCommand(c.templateListCommand())
	cmd.AddCommand(c.templateCheckCommand())
	cmd.AddCommand(c.templateMetaCommand())
	cmd.AddCommand(c.templateUpdateCommand())

	return cmd
}

// templateStore opens the configured template directory without a cache,
// so edits are always read fresh.
func (c *CLI) templateStore() (*template.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return template.NewStore(cfg.Paths.Templates, template.WithLogger(c.Logger)), nil
}

func (c *CLI) templateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.templateStore()
			if err != nil {
				return err
			}
			ids, err := store.List()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				printWarning("No templates in %s", store.Dir())
				return nil
			}
			for _, id := range ids {
				desc, err := store.Descriptor(cmd.Context(), id)
				if err != nil {
					printError("%s: %s", id, errors.UserMessage(err))
					continue
				}
				meta := "default slots"
				if desc.HasMeta {
					meta = id + ".json"
				}
				printInfo("%s %s", StyleValue.Render(id), StyleDim.Render("("+meta+")"))
			}
			return nil
		},
	}
}

func (c *CLI) templateCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "check [id]",
		Short:             "Check that a template image exists",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeTemplates,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.templateStore()
			if err != nil {
				return err
			}
			res, err := store.Check(templateArg(args))
			if err != nil {
				return err
			}
			printSuccess("Template found")
			printFile(res.Path)
			printKeyValue("Size", fmt.Sprintf("%d bytes", res.Size))
			return nil
		},
	}
}

func (c *CLI) templateMetaCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "meta [id]",
		Short:             "Print the slot metadata of a template",
		Long:              `Print the slot metadata of a template as JSON. Templates without a metadata file print the default slots they are rendered with.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeTemplates,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.templateStore()
			if err != nil {
				return err
			}
			desc, err := store.Descriptor(cmd.Context(), templateArg(args))
			if err != nil {
				return err
			}
			if !desc.HasMeta {
				c.Logger.Warn("no metadata file, showing default slots", "template", desc.ID)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(desc.Meta)
		},
	}
}

func (c *CLI) templateUpdateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id> --file meta.json",
		Short: "Replace the slot metadata of a template",
		Long: `Replace the slot metadata of a template with the contents of a JSON file
(or stdin when --file is -). Only templates that already have a metadata
file can be updated.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeTemplates,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var meta template.Meta
			if err := json.Unmarshal(data, &meta); err != nil {
				return errors.Wrap(errors.ErrCodeMetadataParse, err, "invalid metadata in %s", file)
			}
			store, err := c.templateStore()
			if err != nil {
				return err
			}
			if err := store.UpdateMeta(cmd.Context(), args[0], meta); err != nil {
				return err
			}
			printSuccess("Template %s updated", args[0])
			printNextStep("Check the layout", "greetcard layout -t "+args[0]+` "Your Name"`)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "metadata JSON file, or - for stdin")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(filepath.Clean(file))
}

func templateArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return pipeline.DefaultTemplate
}

// completeTemplates completes template ids from the configured directory.
func (c *CLI) completeTemplates(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	store, err := c.templateStore()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ids, err := store.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, id := range ids {
		if strings.HasPrefix(id, toComplete) {
			out = append(out, id)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
