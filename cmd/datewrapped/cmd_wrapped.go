package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/datewrapped/internal/client"
	"github.com/imadgeboyega/datewrapped/internal/client/view"
	"github.com/imadgeboyega/datewrapped/internal/wrapped"
)

var (
	templateTag string
	customTitle string
	customDesc  string
	customType  string
)

var wrappedCmd = &cobra.Command{
	Use:     "wrapped",
	Aliases: []string{"w"},
	Short:   "Pick slide templates and generate your year-in-review",
}

var wrappedTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List templates, marking the ones selected in the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := app.authorized()
		if err != nil {
			return err
		}

		var selected []string
		templates := []wrapped.Template{}
		if s, err := currentWrapped(cmd.Context(), api); err == nil {
			selected = s.Selected
			templates = wrapped.FilterByTag(s.Templates(), templateTag)
		} else {
			if templates, err = api.Templates(cmd.Context(), templateTag); err != nil {
				return err
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), view.Templates(templates, selected, app.styles))
		return nil
	},
}

var wrappedNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new wrapped session and make it current",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := app.authorized()
		if err != nil {
			return err
		}
		s, err := api.CreateWrappedSession(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.store.UpdateConfig(func(c *client.FileConfig) { c.WrappedSession = s.ID }); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), view.Session(s, app.styles))
		return nil
	},
}

var wrappedShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session and its slides",
	RunE: sessionCommand(func(ctx context.Context, api *client.API, id string, args []string) (*wrapped.Session, error) {
		return api.WrappedSession(ctx, id)
	}),
}

var wrappedSelectCmd = &cobra.Command{
	Use:   "select <template-id>...",
	Short: "Select templates, up to 10",
	Args:  cobra.MinimumNArgs(1),
	RunE: sessionCommand(func(ctx context.Context, api *client.API, id string, args []string) (*wrapped.Session, error) {
		var s *wrapped.Session
		for _, templateID := range args {
			var err error
			if s, err = api.SelectTemplate(ctx, id, templateID); err != nil {
				return nil, err
			}
		}
		return s, nil
	}),
}

var wrappedDeselectCmd = &cobra.Command{
	Use:   "deselect <template-id>",
	Short: "Remove a template from the selection",
	Args:  cobra.ExactArgs(1),
	RunE: sessionCommand(func(ctx context.Context, api *client.API, id string, args []string) (*wrapped.Session, error) {
		return api.DeselectTemplate(ctx, id, args[0])
	}),
}

var wrappedCustomCmd = &cobra.Command{
	Use:   "custom",
	Short: "Manage custom templates",
}

var wrappedCustomAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a custom template and select it",
	RunE: sessionCommand(func(ctx context.Context, api *client.API, id string, args []string) (*wrapped.Session, error) {
		return api.AddCustomTemplate(ctx, id, wrapped.CustomTemplateRequest{
			Title:       customTitle,
			Description: customDesc,
			Type:        customType,
		})
	}),
}

var wrappedCustomRmCmd = &cobra.Command{
	Use:   "rm <template-id>",
	Short: "Delete a custom template",
	Args:  cobra.ExactArgs(1),
	RunE: sessionCommand(func(ctx context.Context, api *client.API, id string, args []string) (*wrapped.Session, error) {
		return api.DeleteCustomTemplate(ctx, id, args[0])
	}),
}

var wrappedGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate slides for the selected templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.ErrOrStderr(), app.styles.Muted.Render("generating, this can take a minute…"))
		return sessionCommand(func(ctx context.Context, api *client.API, id string, args []string) (*wrapped.Session, error) {
			return api.GenerateWrapped(ctx, id)
		})(cmd, args)
	},
}

var wrappedResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the selection and slides of the current session",
	RunE: sessionCommand(func(ctx context.Context, api *client.API, id string, args []string) (*wrapped.Session, error) {
		return api.ResetWrapped(ctx, id)
	}),
}

type sessionFunc func(ctx context.Context, api *client.API, id string, args []string) (*wrapped.Session, error)

// sessionCommand runs fn against the current wrapped session and prints the
// session it returns.
func sessionCommand(fn sessionFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		api, err := app.authorized()
		if err != nil {
			return err
		}
		id, err := currentWrappedID()
		if err != nil {
			return err
		}
		s, err := fn(cmd.Context(), api, id, args)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), view.Session(s, app.styles))
		if s.State == wrapped.StateBrowsing {
			fmt.Fprint(cmd.OutOrStdout(), view.Templates(s.SelectedTemplates(), s.Selected, app.styles))
		}
		return nil
	}
}

func currentWrappedID() (string, error) {
	cfg, err := app.store.ReadConfig()
	if err != nil {
		return "", err
	}
	if cfg.WrappedSession == "" {
		return "", fmt.Errorf("no wrapped session, run `datewrapped wrapped new` first")
	}
	return cfg.WrappedSession, nil
}

func currentWrapped(ctx context.Context, api *client.API) (*wrapped.Session, error) {
	id, err := currentWrappedID()
	if err != nil {
		return nil, err
	}
	return api.WrappedSession(ctx, id)
}

func init() {
	wrappedTemplatesCmd.Flags().StringVar(&templateTag, "tag", "", "Only show templates with this tag")

	wrappedCustomAddCmd.Flags().StringVar(&customTitle, "title", "", "Slide title (max 50 characters)")
	wrappedCustomAddCmd.Flags().StringVar(&customDesc, "description", "", "What the slide should show (max 100 characters)")
	wrappedCustomAddCmd.Flags().StringVar(&customType, "type", wrapped.TypeInsight, "insight, stat or fun_fact")
	_ = wrappedCustomAddCmd.MarkFlagRequired("title")
	wrappedCustomCmd.AddCommand(wrappedCustomAddCmd, wrappedCustomRmCmd)

	wrappedCmd.AddCommand(
		wrappedTemplatesCmd,
		wrappedNewCmd,
		wrappedShowCmd,
		wrappedSelectCmd,
		wrappedDeselectCmd,
		wrappedCustomCmd,
		wrappedGenerateCmd,
		wrappedResetCmd,
	)
}
