// Package app wires the TCN Invite server runtime: config, logging, stores,
// HTTP routes and the live check-in feed.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/admin"
	adminapi "github.com/Mykel-Eze/tcn-invite/cmd/internal/admin/api"
	authapi "github.com/Mykel-Eze/tcn-invite/cmd/internal/auth/api"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth/session"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
	invitationapi "github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation/api"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/metrics"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/realtime"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/wizard"
)

// wizardSweepInterval is how often idle wizards are dropped.
const wizardSweepInterval = time.Minute

// App is the server runtime.
type App struct {
	cfg Config
	log Logger

	stores  *Stores
	metrics *metrics.Metrics

	auth    *authapi.Handler
	invites *invitationapi.Handler
	admin   *adminapi.Handler
	wizards *wizard.Registry
	ws      *realtime.Gateway
}

// New wires an App over stores. The App owns stores and closes them in Run.
func New(cfg Config, log Logger, stores *Stores) (*App, error) {
	if log == nil || stores == nil {
		return nil, errors.New("app: logger and stores are required")
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	sessCfg, err := session.LoadConfig(stores.DBEnabled())
	if err != nil {
		return nil, err
	}
	if sessCfg.EphemeralKey {
		log.Warnw("auth.paseto.ephemeral_key", "hint", "set TCN_PASETO_V4_SECRET_KEY_HEX; tokens will not survive a restart")
	}
	tokens, err := session.NewPasetoV4(sessCfg)
	if err != nil {
		return nil, err
	}
	sessions := session.NewService(sessCfg, stores.Sessions, tokens)

	authCfg, err := authapi.LoadConfig()
	if err != nil {
		return nil, err
	}
	authHandler, err := authapi.NewHandler(log, authCfg, stores.Users, stores.Hasher, sessions)
	if err != nil {
		return nil, err
	}

	wsCfg, err := realtime.LoadConfig()
	if err != nil {
		return nil, err
	}
	hub := realtime.NewHub(log)
	gateway, err := realtime.NewGateway(log, hub, authHandler, wsCfg)
	if err != nil {
		return nil, err
	}

	verifyOpts := []invitation.VerifierOption{
		invitation.WithTimeout(cfg.VerifyTimeout),
		invitation.WithDirectory(stores.Campuses),
		invitation.WithUsers(stores.Users),
		invitation.WithListener(hub),
	}
	if m != nil {
		verifyOpts = append(verifyOpts, invitation.WithObserver(m))
	}
	verifier, err := invitation.NewVerifier(stores.Invitations, verifyOpts...)
	if err != nil {
		return nil, err
	}

	renderer := flyer.DefaultRenderer{Options: []flyer.Option{flyer.WithScale(cfg.FlyerScale)}}
	wdeps := wizard.Deps{
		Store:     stores.Invitations,
		Renderer:  renderer,
		Campuses:  stores.Campuses,
		Log:       log,
		BaseURL:   cfg.BaseURL(),
		ShareBase: cfg.ShareBaseURL,
	}
	if m != nil {
		wdeps.Recorder = m
	}
	wizards, err := wizard.NewRegistry(wdeps, cfg.WizardIdleTTL)
	if err != nil {
		return nil, err
	}

	invites, err := invitationapi.NewHandler(invitationapi.Deps{
		Log:         log,
		Wizards:     wizards,
		Verifier:    verifier,
		Campuses:    stores.Campuses,
		Invitations: stores.Invitations,
		Renderer:    renderer,
		ShareBase:   cfg.ShareBaseURL,
	})
	if err != nil {
		return nil, err
	}

	adminHandler, err := adminapi.NewHandler(log, admin.Loader{
		Invitations: stores.Invitations,
		Users:       stores.Users,
		Campuses:    stores.Campuses,
	}, stores.Users)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		stores:  stores,
		metrics: m,
		auth:    authHandler,
		invites: invites,
		admin:   adminHandler,
		wizards: wizards,
		ws:      gateway,
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.registerHTTP(mux)

	var h http.Handler = a.auth.Middleware(mux)
	h = WithSecurityHeaders(h)
	h = WithCORS(h, a.cfg, a.log)
	return WithRequestLogging(h, a.log, a.metrics)
}

// Run serves HTTP until ctx is cancelled or the server fails, then shuts
// down and closes the stores.
func (a *App) Run(ctx context.Context) error {
	defer a.stores.Close()

	if a.cfg.BootstrapAdminEmail != "" {
		u, created, err := EnsureAdmin(ctx, a.stores.Users, a.cfg.BootstrapAdminEmail, a.cfg.BootstrapAdminName, a.cfg.BootstrapAdminPassword)
		if err != nil {
			return err
		}
		if created {
			a.log.Infow("admin.bootstrap", "user_id", u.ID, "email", u.Email)
		}
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	base := a.cfg.BaseURL()
	a.log.Infow("server.start",
		"addr", a.cfg.HTTPAddr,
		"base_url", base,
		"checkins_ws", wsBaseURL(base)+"/ws/checkins",
		"db_enabled", a.stores.DBEnabled(),
		"metrics_enabled", a.metrics != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sweep := time.NewTicker(wizardSweepInterval)
	defer sweep.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			a.log.Infow("server.stop", "reason", "context_done")
			break loop
		case err := <-errCh:
			a.log.Errorw("server.fail", "err", err)
			return err
		case <-sweep.C:
			if n := a.wizards.Sweep(); n > 0 {
				a.log.Debugw("wizard.sweep", "expired", n, "live", a.wizards.Len())
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Errorw("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Infow("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
