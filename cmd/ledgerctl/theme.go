package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thanakrit/ledgerctl/internal/session"
)

const (
	themeKey     = "theme"
	themeLight   = "light"
	themeDark    = "dark"
	defaultTheme = themeDark
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show or set the table color theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if len(args) == 0 {
				fmt.Println(currentTheme(ctx, app.store))
				return nil
			}

			theme := args[0]
			if theme != themeLight && theme != themeDark {
				return fmt.Errorf("unknown theme %q, expected %s or %s", theme, themeLight, themeDark)
			}
			return app.store.SetPreference(ctx, themeKey, theme)
		},
	}
	return cmd
}

func currentTheme(ctx context.Context, store session.Store) string {
	theme, err := store.Preference(ctx, themeKey)
	if err != nil || theme == "" {
		return defaultTheme
	}
	return theme
}

func headerStyleFor(theme string) lipgloss.Style {
	if theme == themeLight {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("24"))
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
}
