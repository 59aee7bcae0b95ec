package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/common"
	"github.com/thanakrit/ledgerctl/internal/model"
)

// counterpartyCmd builds the debtor or creditor command tree; the two
// differ only in the API resource they target.
func counterpartyCmd(kind, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind,
		Short: short,
	}

	cmd.AddCommand(counterpartyListCmd(kind))
	cmd.AddCommand(counterpartyGetCmd(kind))
	cmd.AddCommand(counterpartyCreateCmd(kind))
	cmd.AddCommand(counterpartyUpdateCmd(kind))
	cmd.AddCommand(counterpartyDeleteCmd(kind))

	return cmd
}

func counterpartyListCmd(kind string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %ss", kind),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			q, _ := cmd.Flags().GetString("search")
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.requireSession(ctx); err != nil {
				return err
			}

			items, meta, err := app.client.ListCounterparties(ctx, kind, api.ListParams{
				Q: q, Page: page, Limit: limit,
			})
			if err != nil {
				app.notifier.Error("โหลดรายชื่อไม่สำเร็จ", common.UserMessage(err))
				return err
			}

			for _, item := range items {
				fmt.Printf("%-24s %s\n", item.GUIDFixed, item.DisplayLabel())
			}
			fmt.Printf("หน้า %d (%d รายการทั้งหมด)\n", meta.Page, meta.Total)
			return nil
		},
	}
	cmd.Flags().StringP("search", "q", "", "search text")
	cmd.Flags().Int("page", 1, "page")
	cmd.Flags().Int("limit", 20, "rows per page")
	return cmd
}

func counterpartyGetCmd(kind string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s as JSON", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.requireSession(ctx); err != nil {
				return err
			}

			item, err := app.client.GetCounterparty(ctx, kind, args[0])
			if err != nil {
				app.notifier.Error("โหลดข้อมูลไม่สำเร็จ", common.UserMessage(err))
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(item)
		},
	}
}

func readCounterpartyFile(path string) (*model.Counterparty, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var item model.Counterparty
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if item.Code == "" {
		return nil, fmt.Errorf("%s: code is required", path)
	}
	return &item, nil
}

func counterpartyCreateCmd(kind string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s from a JSON file", kind),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			file, _ := cmd.Flags().GetString("file")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.requireSession(ctx); err != nil {
				return err
			}

			item, err := readCounterpartyFile(file)
			if err != nil {
				return err
			}
			if err := app.client.CreateCounterparty(ctx, kind, item); err != nil {
				app.notifier.Error("บันทึกไม่สำเร็จ", common.UserMessage(err))
				return err
			}
			app.notifier.Success("บันทึกแล้ว", item.DisplayLabel())
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "JSON file describing the record")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func counterpartyUpdateCmd(kind string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update a %s from a JSON file", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			file, _ := cmd.Flags().GetString("file")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.requireSession(ctx); err != nil {
				return err
			}

			item, err := readCounterpartyFile(file)
			if err != nil {
				return err
			}
			if err := app.client.UpdateCounterparty(ctx, kind, args[0], item); err != nil {
				app.notifier.Error("บันทึกไม่สำเร็จ", common.UserMessage(err))
				return err
			}
			app.notifier.Success("บันทึกแล้ว", item.DisplayLabel())
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "JSON file describing the record")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func counterpartyDeleteCmd(kind string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				return fmt.Errorf("refusing to delete without --yes")
			}

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.requireSession(ctx); err != nil {
				return err
			}

			if err := app.client.DeleteCounterparty(ctx, kind, args[0]); err != nil {
				app.notifier.Error("ลบไม่สำเร็จ", common.UserMessage(err))
				return err
			}
			app.notifier.Success("ลบแล้ว", args[0])
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm deletion")
	return cmd
}
