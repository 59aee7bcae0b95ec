package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/thanakrit/ledgerctl/internal/common"
	"github.com/thanakrit/ledgerctl/internal/money"
	"github.com/thanakrit/ledgerctl/internal/report"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Pull tax and account-status reports",
	}

	cmd.AddCommand(reportListCmd())
	cmd.AddCommand(reportShowCmd())
	cmd.AddCommand(reportExcelCmd())
	cmd.AddCommand(reportPDFCmd())
	cmd.AddCommand(reportDownloadCmd())
	cmd.AddCommand(reportJournalCmd())

	return cmd
}

func reportListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available report families",
		Run: func(_ *cobra.Command, _ []string) {
			for _, f := range report.Families() {
				fmt.Printf("%-18s %s\n", f.Key, f.Title)
			}
		},
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Int("year", 0, "tax year (Buddhist era)")
	cmd.Flags().Int("month", 0, "tax month (1-12)")
	cmd.Flags().String("account", "", "ledger account code (status reports)")
	cmd.Flags().String("cust", "", "debtor/creditor code (status reports)")
	cmd.Flags().Int("page", 0, "page to fetch")
	cmd.Flags().Int("page-size", 0, "rows per page")
	cmd.Flags().Bool("all", false, "fetch the whole report in one page")
}

// prepareController initializes a controller for the named family and
// applies any filter flags, refetching when they change the defaults.
func prepareController(ctx context.Context, cmd *cobra.Command, app *app, key string) (*report.Controller, error) {
	family, ok := report.FamilyByKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown report family %q (see: ledgerctl report list)", key)
	}
	if _, err := app.requireSession(ctx); err != nil {
		return nil, err
	}

	ctrl := app.newController(family)
	if err := ctrl.Initialize(ctx); err != nil {
		return nil, err
	}

	f := ctrl.Filters()
	changed := false

	if year, _ := cmd.Flags().GetInt("year"); year != 0 {
		month, _ := cmd.Flags().GetInt("month")
		if month == 0 {
			month = f.Period
		}
		ctrl.SetPeriod(year, month)
		changed = true
	} else if month, _ := cmd.Flags().GetInt("month"); month != 0 {
		ctrl.SetPeriod(f.Year, month)
		changed = true
	}
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		to, _ := cmd.Flags().GetString("to")
		if to == "" {
			to = f.ToDate
		}
		ctrl.SetDateRange(from, to)
		changed = true
	}
	if account, _ := cmd.Flags().GetString("account"); account != "" {
		ctrl.SetAccount(account)
		changed = true
	}
	if cust, _ := cmd.Flags().GetString("cust"); cust != "" {
		ctrl.SetCounterparty(cust)
		changed = true
	}

	if all, _ := cmd.Flags().GetBool("all"); all {
		if err := ctrl.SetPageSize(ctx, report.PageSizeAll); err != nil {
			return nil, err
		}
		changed = false
	} else if size, _ := cmd.Flags().GetInt("page-size"); size > 0 {
		if err := ctrl.SetPageSize(ctx, size); err != nil {
			return nil, err
		}
		changed = false
	}

	if changed {
		if err := ctrl.Fetch(ctx, true); err != nil {
			return nil, err
		}
	}
	if page, _ := cmd.Flags().GetInt("page"); page > 0 {
		if err := ctrl.GoToPage(ctx, page); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

func printReport(ctrl *report.Controller, family report.Family, headerStyle lipgloss.Style) {
	headers := make([]string, len(family.Columns))
	for i, col := range family.Columns {
		headers[i] = col.Title
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers(headers...)

	for _, r := range ctrl.Rows() {
		cells := make([]string, len(family.Columns))
		for i, col := range family.Columns {
			cells[i] = r.Cells[col.Key]
		}
		tbl.Row(cells...)
	}
	fmt.Println(tbl)

	totals := ctrl.Totals()
	for _, col := range family.Columns {
		if col.Total {
			fmt.Printf("%s: %s  ", col.Title, money.FormatDisplay(totals[col.Key], money.DisplayDecimalPlaces))
		}
	}
	fmt.Println()
	fmt.Printf("หน้า %d/%d (%d รายการ)\n", ctrl.Filters().Page, ctrl.TotalPages(), ctrl.Total())
}

func reportShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <family>",
		Short: "Fetch a report page and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			ctrl, err := prepareController(ctx, cmd, app, args[0])
			if err != nil {
				return err
			}
			family, _ := report.FamilyByKey(args[0])
			printReport(ctrl, family, headerStyleFor(currentTheme(ctx, app.store)))
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func reportExcelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "excel <family>",
		Short: "Export the current report page as an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out, _ := cmd.Flags().GetString("output")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			ctrl, err := prepareController(ctx, cmd, app, args[0])
			if err != nil {
				return err
			}

			data, err := ctrl.ExportExcel()
			if err != nil {
				app.notifier.Error("สร้างไฟล์ Excel ไม่สำเร็จ", common.UserMessage(err))
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			app.notifier.Success("บันทึกไฟล์แล้ว", out)
			return nil
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().StringP("output", "o", "report.xlsx", "output file")
	return cmd
}

func reportPDFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf <family>",
		Short: "Render the current report page as a PDF locally",
		Long: `Render the loaded page into a PDF on this machine using the fonts
configured under export.font_regular and export.font_bold. For the
server-rendered document covering the whole report, use
"ledgerctl report download".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out, _ := cmd.Flags().GetString("output")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			ctrl, err := prepareController(ctx, cmd, app, args[0])
			if err != nil {
				return err
			}

			data, err := ctrl.ExportPDF()
			if err != nil {
				app.notifier.Error("สร้างไฟล์ PDF ไม่สำเร็จ", common.UserMessage(err))
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			app.notifier.Success("บันทึกไฟล์แล้ว", out)
			return nil
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().StringP("output", "o", "report.pdf", "output file")
	return cmd
}

func reportDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <family>",
		Short: "Have the backend render the full report PDF and download it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out, _ := cmd.Flags().GetString("output")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			ctrl, err := prepareController(ctx, cmd, app, args[0])
			if err != nil {
				return err
			}
			if ctrl.IsDownloadDisabled() {
				app.notifier.Warn("ไม่มีข้อมูลให้ดาวน์โหลด", "ปรับช่วงวันที่แล้วลองใหม่")
				return nil
			}

			stop := app.notifier.Loading("กำลังสร้างเอกสาร...")
			data, fileName, err := ctrl.DownloadPDF(ctx)
			stop()
			if err != nil {
				return err
			}

			if out == "" {
				out = fileName
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			app.notifier.Success("บันทึกไฟล์แล้ว", out)
			return nil
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "output file (default: server file name)")
	return cmd
}

func reportJournalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journal <docno>",
		Short: "Show the ledger lines behind one document",
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

			lines, err := app.client.JournalDetail(ctx, args[0])
			if err != nil {
				app.notifier.Error("โหลดรายละเอียดเอกสารไม่สำเร็จ", common.UserMessage(err))
				return err
			}

			tbl := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("รหัสบัญชี", "ชื่อบัญชี", "เดบิต", "เครดิต")

			var debit, credit float64
			for _, line := range lines {
				debit += line.Debit
				credit += line.Credit
				tbl.Row(
					line.AccountCode,
					line.AccountName,
					money.FormatDisplay(line.Debit, money.DisplayDecimalPlaces),
					money.FormatDisplay(line.Credit, money.DisplayDecimalPlaces),
				)
			}
			fmt.Println(tbl)

			if !money.IsBalanced(debit, credit) {
				app.notifier.Warn("เอกสารไม่สมดุล", fmt.Sprintf("เดบิต %s เครดิต %s",
					money.FormatDisplay(debit, money.DisplayDecimalPlaces),
					money.FormatDisplay(credit, money.DisplayDecimalPlaces)))
			}
			return nil
		},
	}
}
