package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/common"
)

func statementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement <file.pdf>",
		Short: "Extract transactions from a bank statement PDF",
		Long: `Upload a bank statement to the OCR service and print the extracted
result as JSON. Password-protected statements need --password.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			password, _ := cmd.Flags().GetString("password")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.cfg.OCRBaseURL == "" {
				return fmt.Errorf("api.ocr_base_url is not configured")
			}

			f, err := os.Open(args[0]) // #nosec G304
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			ocr := api.NewOCRClient(app.cfg.OCRBaseURL)

			stop := app.notifier.Loading("กำลังอ่านเอกสาร...")
			result, err := ocr.ReadBankStatement(ctx, filepath.Base(args[0]), f, password)
			stop()
			if err != nil {
				app.notifier.Error("อ่านเอกสารไม่สำเร็จ", common.UserMessage(err))
				return err
			}
			if result.Cached {
				common.LogDebug("ocr result served from cache", nil)
			}

			fmt.Println(string(result.Result))
			return nil
		},
	}
	cmd.Flags().String("password", "", "statement password")
	cmd.AddCommand(statementTasksCmd())
	return cmd
}

func statementTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List recent OCR extraction jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.cfg.OCRBaseURL == "" {
				return fmt.Errorf("api.ocr_base_url is not configured")
			}

			ocr := api.NewOCRClient(app.cfg.OCRBaseURL)
			tasks, err := ocr.ListTasks(ctx)
			if err != nil {
				app.notifier.Error("โหลดรายการงานไม่สำเร็จ", common.UserMessage(err))
				return err
			}

			for _, t := range tasks {
				fmt.Printf("%-36s %-10s %-19s %s\n", t.TaskID, t.Status, t.CreatedAt, t.Filename)
			}
			return nil
		},
	}
}
