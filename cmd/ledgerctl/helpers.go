package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/common"
	"github.com/thanakrit/ledgerctl/internal/config"
	"github.com/thanakrit/ledgerctl/internal/notify"
	"github.com/thanakrit/ledgerctl/internal/pdfjob"
	"github.com/thanakrit/ledgerctl/internal/report"
	"github.com/thanakrit/ledgerctl/internal/session"
)

// app bundles the wired clients every command needs. Commands build it
// once, use it, and Close it.
type app struct {
	cfg      *config.Config
	store    *session.SQLiteStore
	client   *api.Client
	reports  *api.ReportClient
	notifier *notify.Terminal
}

// newApp loads config, opens the state store and wires the API clients
// to it. The token callback reads the store on every request so a
// re-login in another terminal is picked up; the unauthorized hook
// wipes the session the way the backend expects after a 401.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := session.NewSQLiteStore(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	notifier := notify.NewTerminal()

	tokenFn := func() string {
		sess, err := store.Session(ctx)
		if err != nil {
			return ""
		}
		return sess.Token
	}
	onUnauthorized := func() {
		if err := store.Clear(ctx); err != nil {
			common.LogError(err, "failed to clear session after 401", nil)
		}
		notifier.Warn("เซสชันหมดอายุ", "กรุณาเข้าสู่ระบบใหม่ด้วย ledgerctl login")
	}

	client := api.NewClient(cfg.APIBaseURL,
		api.WithToken(tokenFn),
		api.WithUnauthorizedHook(onUnauthorized),
	)
	// PDF downloads can run long on big periods.
	reports := api.NewReportClient(cfg.ReportBaseURL,
		api.WithToken(tokenFn),
		api.WithUnauthorizedHook(onUnauthorized),
		api.WithHTTPClient(&http.Client{Timeout: 2 * time.Minute}),
	)

	return &app{
		cfg:      cfg,
		store:    store,
		client:   client,
		reports:  reports,
		notifier: notifier,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		common.LogError(err, "failed to close state store", nil)
	}
}

// requireSession fails fast when the user has not logged in and
// selected a shop.
func (a *app) requireSession(ctx context.Context) (session.Session, error) {
	sess, err := a.store.Session(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if !sess.Authenticated {
		return session.Session{}, common.ErrUnauthorized
	}
	if !sess.HasShop() {
		return session.Session{}, common.ErrShopNotSelected
	}
	return sess, nil
}

// newController wires a report controller for one family.
func (a *app) newController(family report.Family) *report.Controller {
	return report.NewController(family, report.Deps{
		Client:   a.client,
		Reports:  a.reports,
		Poller:   pdfjob.New(),
		Store:    a.store,
		Notifier: a.notifier,
		Fonts:    a.cfg.Fonts,
	})
}
