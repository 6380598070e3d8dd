// Package bot assembles the Tashi travel assistant: it wires the travel
// domain components to the Telegram transport, registers the command surface,
// and drives the planning dialogue.
package bot

import (
	"fmt"

	"github.com/breathebhutan/tashi/core/bootstrap"
	tg "github.com/breathebhutan/tashi/core/telegram"
	"github.com/breathebhutan/tashi/core/telegram/dialog"
	tghelpers "github.com/breathebhutan/tashi/core/telegram/helpers"
	"github.com/breathebhutan/tashi/core/telegram/router"
	"github.com/breathebhutan/tashi/travel/datastore"
	"github.com/breathebhutan/tashi/travel/finalize"
	"github.com/breathebhutan/tashi/travel/inquiry"
	"github.com/breathebhutan/tashi/travel/notify"
	"github.com/breathebhutan/tashi/travel/planner"
	"github.com/breathebhutan/tashi/travel/recommend"
	"github.com/breathebhutan/tashi/travel/render"

	tele "gopkg.in/telebot.v4"
)

// App is the assembled bot application.
type App struct {
	cfg *Config

	store     *datastore.Store
	planner   *planner.Planner
	filter    *recommend.Filter
	finalizer *finalize.Finalizer
	inquiries *inquiry.Store

	registry *tg.Registry
	dialog   *dialog.Router
}

// New wires the application from configuration and bootstrapped
// infrastructure. The data store must already be loaded.
func New(cfg *Config, infra *bootstrap.Result, store *datastore.Store) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	if store == nil {
		return nil, fmt.Errorf("bot: nil data store")
	}

	a := &App{
		cfg:     cfg,
		store:   store,
		planner: planner.New(cfg.Plan.SessionTTL()),
		filter:  recommend.New(store),
	}
	if infra != nil && infra.DB != nil {
		a.inquiries = inquiry.NewStore(infra.DB)
	}
	a.finalizer = finalize.New(inquiryStoreOrNil(a.inquiries), buildNotifier(cfg))

	fb := fallbacks{app: a}
	a.registry = tg.NewRegistry()
	a.registry.SetTextFallback(fb.UnknownText())
	a.registry.SetCallbackNotFound(fb.UnknownCallback())
	a.dialog = dialog.NewRouter(a.planner)

	a.registerCommands()
	a.registerPlanFlow()
	return a, nil
}

// inquiryStoreOrNil avoids handing the finalizer a typed nil interface.
func inquiryStoreOrNil(s *inquiry.Store) finalize.InquiryStore {
	if s == nil {
		return nil
	}
	return s
}

// buildNotifier assembles the transport chain from configuration. With no
// transport enabled the empty chain reports failure and the inquiry row
// remains the only record.
func buildNotifier(cfg *Config) *notify.Chain {
	var transports []notify.Notifier
	if e := cfg.Notify.Email; e.Enabled {
		transports = append(transports,
			notify.NewEmail(e.Host, e.Port, e.Username, e.Password, e.From, e.To))
	}
	if w := cfg.Notify.Webhook; w.Enabled {
		transports = append(transports,
			notify.NewWebhook(w.URL, w.Token, w.MaxAttempts))
	}
	return notify.NewChain(transports...)
}

// TelegramRunOptions builds the transport run options for the core runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	var routes []tg.Route
	routes = append(routes, router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, "This command is reserved for the Breathe Bhutan team.")
		},
	})...)
	fb := fallbacks{app: a}
	routes = append(routes, router.TextRoutes(a.dialog, a.registry, router.TextOptions{
		UnknownText:     fb.UnknownText(),
		UnknownDocument: fb.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{
		NotFound: fb.UnknownCallback(),
	}))

	return tg.RunOptions{
		Config:   &a.cfg.Config,
		Registry: a.registry,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, func(c tele.Context) error {
			return tghelpers.SendText(c, render.Busy)
		}),
		Routes: routes,
	}, nil
}
