package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/common"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			q, _ := cmd.Flags().GetString("search")
			selectable, _ := cmd.Flags().GetBool("selectable")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.requireSession(ctx); err != nil {
				return err
			}

			accounts, _, err := app.client.ListChartOfAccounts(ctx, api.ListParams{Q: q, Limit: 1000})
			if err != nil {
				app.notifier.Error("โหลดผังบัญชีไม่สำเร็จ", common.UserMessage(err))
				return err
			}

			for _, a := range accounts {
				if selectable && !a.Selectable() {
					continue
				}
				indent := ""
				if a.AccountLevel > 1 {
					indent = strings.Repeat("  ", a.AccountLevel-1)
				}
				fmt.Printf("%s%s  %s\n", indent, a.AccountCode, a.AccountName)
			}
			return nil
		},
	}
	cmd.Flags().StringP("search", "q", "", "search text")
	cmd.Flags().Bool("selectable", false, "only accounts usable in report filters")
	return cmd
}
