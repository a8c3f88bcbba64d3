package cmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/auth"
	"github.com/jrsteele09/go-car-rental/bookings"
	"github.com/jrsteele09/go-car-rental/cars"
	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/jrsteele09/go-car-rental/credentials/filestore"
	"github.com/jrsteele09/go-car-rental/credentials/redisstore"
	"github.com/jrsteele09/go-car-rental/credentials/storefake"
	"github.com/jrsteele09/go-car-rental/format"
	"github.com/jrsteele09/go-car-rental/internal/config"
	"github.com/jrsteele09/go-car-rental/internal/log"
	"github.com/jrsteele09/go-car-rental/querycache"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

// app is what a command runs against: config, session and the API services
type app struct {
	opts *options

	cfg     *config.Settings
	logger  zerolog.Logger
	closers []func() error

	session  *credentials.Session
	client   *apiclient.Client
	auth     *auth.Service
	cars     *cars.Service
	bookings *bookings.Service
	money    *format.MoneyFormatter

	stdin *bufio.Reader
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = log.NewWithWriter(cmd.ErrOrStderr(), cfg.GetEnv(), cfg.GetLogLevel())

	lang, err := language.Parse(a.opts.lang)
	if err != nil {
		return fmt.Errorf("invalid --lang %q: %w", a.opts.lang, err)
	}
	a.money = format.NewMoneyFormatter(lang, a.opts.currency)

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	a.session = credentials.NewSession(store)
	if err := a.session.Load(ctx); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	nav := &navigator{view: viewFor(cmd), out: cmd.ErrOrStderr()}
	a.client, err = apiclient.New(cfg.GetBaseURL(), a.session,
		apiclient.WithTimeout(cfg.GetTimeout()),
		apiclient.WithLogger(a.logger),
		apiclient.WithNavigator(nav),
		apiclient.WithPublicViews(cfg.GetPublicViews()...),
	)
	if err != nil {
		return err
	}

	authOpts := []auth.ServiceOption{auth.WithLogger(a.logger)}
	if cfg.GetPasswordStrength() {
		authOpts = append(authOpts, auth.WithPasswordStrength())
	}
	if a.auth, err = auth.New(a.client, a.session, authOpts...); err != nil {
		return err
	}

	// cleared by the services whenever the session begins or ends
	cache := querycache.New(querycache.DefaultTTL)
	if a.cars, err = cars.New(a.client, cars.WithCache(cache)); err != nil {
		return err
	}
	if a.bookings, err = bookings.New(a.client, bookings.WithCache(cache)); err != nil {
		return err
	}

	a.logger.Debug().
		Str("base_url", a.client.BaseURL()).
		Str("store", cfg.GetStoreBackend()).
		Str("view", nav.view).
		Msg("client ready")
	return nil
}

// loadConfig reads the config file and environment with the persistent
// flags layered on top
func (a *app) loadConfig(cmd *cobra.Command) (*config.Settings, error) {
	v := config.NewViper(a.opts.cfgFile)
	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"api.base_url":  "base-url",
		"store.backend": "store",
		"log.level":     "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}
	if a.opts.store != nil {
		v.Set("store.backend", config.BackendMemory)
	}
	return config.Load(v)
}

func (a *app) openStore(ctx context.Context, cfg config.StoreConfig) (credentials.Store, error) {
	if a.opts.store != nil {
		return a.opts.store, nil
	}
	switch cfg.GetStoreBackend() {
	case config.BackendMemory:
		return storefake.NewFakeStore(), nil
	case config.BackendFile:
		return filestore.New(cfg.GetStorePath(), filestore.WithPassphrase(cfg.GetStorePassphrase())), nil
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return redisstore.New(client, cfg.GetRedisKeyPrefix()), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.GetStoreBackend())
}

func (a *app) close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
