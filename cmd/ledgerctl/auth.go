package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/common"
	"github.com/thanakrit/ledgerctl/internal/identity"
	"github.com/thanakrit/ledgerctl/internal/model"
	"github.com/thanakrit/ledgerctl/internal/session"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the accounting backend",
		Long: `Authenticate with a username and password, or with Google via
--google. The session token is stored locally; select a shop with
"ledgerctl shops select" before pulling reports.`,
		RunE: runLogin,
	}

	cmd.Flags().StringP("username", "u", "", "account username")
	cmd.Flags().Bool("google", false, "sign in with Google instead of a password")

	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	useGoogle, _ := cmd.Flags().GetBool("google")

	var creds api.Credentials
	sess := session.Session{Authenticated: true}

	if useGoogle {
		idToken, err := identity.SignInInteractive(ctx, app.cfg.Identity)
		if err != nil {
			return fmt.Errorf("google sign-in failed: %w", err)
		}
		creds, err = app.client.TokenLogin(ctx, idToken)
		if err != nil {
			app.notifier.Error("เข้าสู่ระบบไม่สำเร็จ", common.UserMessage(err))
			return err
		}
		sess.DisplayName = identity.DisplayName(idToken)
	} else {
		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			fmt.Fprint(os.Stderr, "Username: ")
			if _, err := fmt.Scanln(&username); err != nil {
				return fmt.Errorf("reading username: %w", err)
			}
		}
		username = strings.TrimSpace(username)

		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		creds, err = app.client.Login(ctx, username, string(password))
		if err != nil {
			app.notifier.Error("เข้าสู่ระบบไม่สำเร็จ", common.UserMessage(err))
			return err
		}
		sess.Username = username
	}

	sess.Token = creds.Token
	sess.Refresh = creds.Refresh
	if err := app.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	app.notifier.Success("เข้าสู่ระบบแล้ว", "เลือกกิจการด้วย ledgerctl shops select")
	return nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			// Best effort server side; the local wipe always happens.
			if err := app.client.Logout(ctx); err != nil {
				common.LogError(err, "backend logout failed", nil)
			}
			if err := app.store.Clear(ctx); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}

			app.notifier.Success("ออกจากระบบแล้ว", "")
			return nil
		},
	}
}

func shopsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shops",
		Short: "List and select the active shop",
	}

	cmd.AddCommand(shopsListCmd())
	cmd.AddCommand(shopsSelectCmd())
	cmd.AddCommand(shopsFavoriteCmd())
	cmd.AddCommand(shopsUpdateCmd())

	return cmd
}

func shopsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shops available to this account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			shops, err := app.client.ListShops(ctx)
			if err != nil {
				app.notifier.Error("โหลดรายชื่อกิจการไม่สำเร็จ", common.UserMessage(err))
				return err
			}

			sess, _ := app.store.Session(ctx)
			for _, shop := range shops {
				marker := " "
				if shop.ShopID == sess.ShopID {
					marker = "*"
				}
				fav := ""
				if shop.IsFavorite {
					fav = " (favorite)"
				}
				fmt.Printf("%s %s  %s%s\n", marker, shop.ShopID, shop.Name, fav)
			}
			return nil
		},
	}
}

func shopsSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <shop-id>",
		Short: "Select the shop reports are pulled for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			shopID := args[0]

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.client.SelectShop(ctx, shopID); err != nil {
				app.notifier.Error("เลือกกิจการไม่สำเร็จ", common.UserMessage(err))
				return err
			}

			// Resolve the display name for the stored session.
			shopName := shopID
			if shops, err := app.client.ListShops(ctx); err == nil {
				for _, shop := range shops {
					if shop.ShopID == shopID {
						shopName = shop.Name
						break
					}
				}
			}

			sess, err := app.store.Session(ctx)
			if err != nil {
				return err
			}
			sess.ShopID = shopID
			sess.ShopName = shopName
			if err := app.store.SaveSession(ctx, sess); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			// Filter snapshots belong to the previous shop.
			if err := app.store.ClearSnapshots(ctx); err != nil {
				common.LogError(err, "failed to clear filter snapshots", nil)
			}

			app.notifier.Success("เลือกกิจการแล้ว", shopName)
			return nil
		},
	}
}

func shopsFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite <shop-id>",
		Short: "Mark a shop as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			remove, _ := cmd.Flags().GetBool("remove")

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.client.FavoriteShop(ctx, args[0], !remove); err != nil {
				app.notifier.Error("บันทึกรายการโปรดไม่สำเร็จ", common.UserMessage(err))
				return err
			}
			app.notifier.Success("บันทึกแล้ว", "")
			return nil
		},
	}
	cmd.Flags().Bool("remove", false, "remove the favorite flag instead")
	return cmd
}

func shopsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <shop-id>",
		Short: "Update a shop profile from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			file, _ := cmd.Flags().GetString("file")

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			var shop model.Shop
			if err := json.Unmarshal(data, &shop); err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.client.UpdateShop(ctx, args[0], &shop); err != nil {
				app.notifier.Error("บันทึกข้อมูลกิจการไม่สำเร็จ", common.UserMessage(err))
				return err
			}
			app.notifier.Success("บันทึกข้อมูลกิจการแล้ว", "")
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "JSON file with the shop profile")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
