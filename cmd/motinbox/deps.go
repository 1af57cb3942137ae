package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cristianoliveira/motinbox/cmd"
	"github.com/cristianoliveira/motinbox/internal/api"
	"github.com/cristianoliveira/motinbox/internal/app"
	"github.com/cristianoliveira/motinbox/internal/auth"
	"github.com/cristianoliveira/motinbox/internal/cache"
	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/config"
	"github.com/cristianoliveira/motinbox/internal/controller"
	"github.com/cristianoliveira/motinbox/internal/credential"
	"github.com/cristianoliveira/motinbox/internal/dedupconfig"
	"github.com/cristianoliveira/motinbox/internal/desktop"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/hooks"
	"github.com/cristianoliveira/motinbox/internal/logging"
	"github.com/cristianoliveira/motinbox/internal/notice"
	"github.com/cristianoliveira/motinbox/internal/retry"
	"github.com/cristianoliveira/motinbox/internal/settings"
	"github.com/cristianoliveira/motinbox/internal/storage"
	"github.com/cristianoliveira/motinbox/internal/transport"
	"github.com/cristianoliveira/motinbox/internal/tui"
	"github.com/cristianoliveira/motinbox/internal/tui/state"
	"github.com/cristianoliveira/motinbox/internal/version"
)

// env holds the collaborators of one command run, built from the loaded
// configuration.
type env struct {
	session   auth.Session
	role      domain.Role
	api       *api.Client
	cache     *cache.Store
	snapshots storage.Snapshotter
	hooks     *hooks.Runner
	provider  *transport.Provider
}

// credentials returns token, user id and role. Configuration wins; the
// keyring fills in only when no token is configured.
func credentials() (token, userID, role string) {
	token = config.Get("token", "")
	userID = config.Get("user_id", "")
	role = config.Get("role", "")
	if token != "" {
		return token, userID, role
	}
	store, err := credential.Open(config.Get("config_dir", ""))
	if err != nil {
		colors.Debug("keyring unavailable:", err.Error())
		return token, userID, role
	}
	token = store.Lookup(credential.TokenKey)
	if userID == "" {
		userID = store.Lookup(credential.UserIDKey)
	}
	if role == "" {
		role = store.Lookup(credential.RoleKey)
	}
	return token, userID, role
}

func openEnv() (*env, error) {
	session, err := auth.Resolve(credentials())
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	role := cmd.InboxRole()
	if role == "" && session.User != nil {
		role = session.User.Type
	}
	if role == "" {
		role = domain.RoleDriver
	}

	snapshots, err := storage.NewForBackend(config.Get("cache_backend", storage.BackendMemory), config.Get("state_dir", ""))
	if err != nil {
		return nil, err
	}

	runner := hooks.New(hooks.OptionsFromConfig())
	if err := runner.Init(); err != nil {
		colors.Warning(fmt.Sprintf("hooks disabled: %v", err))
	}

	userID := ""
	if session.User != nil {
		userID = session.User.ID
	}
	return &env{
		session: session,
		role:    role,
		api: api.New(config.Get("api_url", ""),
			api.WithTimeout(config.GetDuration("request_timeout", api.DefaultTimeout)),
			api.WithToken(session.Token),
			api.WithUserID(userID)),
		cache:     cache.New(cache.WithMaxAge(config.GetDuration("cache_max_age", 0))),
		snapshots: snapshots,
		hooks:     runner,
		provider: transport.NewProvider(config.Get("socket_url", ""),
			transport.WithReconnectDelay(config.GetMillis("reconnect_delay_ms", transport.DefaultReconnectDelay)),
			transport.WithLogger(logging.With("component", "transport"))),
	}, nil
}

func (e *env) close() {
	e.hooks.Wait()
	if err := e.provider.Release(); err != nil {
		colors.Debug("closing push connection:", err.Error())
	}
	if err := e.snapshots.Close(); err != nil {
		colors.Debug("closing snapshot store:", err.Error())
	}
}

// newController builds the role controller. sink, notices and onChange may be nil.
func (e *env) newController(sink controller.Sink, notices controller.Notices, onChange func()) *controller.Controller {
	return controller.New(controller.Options{
		User:    e.session.User,
		Role:    e.role,
		API:     e.api,
		Cache:   e.cache,
		Sink:    sink,
		Notices: notices,
		Retry: retry.Policy{
			MaxAttempts: config.GetInt("retry_attempts", retry.DefaultMaxAttempts),
			Delay:       config.GetMillis("retry_delay_ms", retry.DefaultDelay),
		},
		PageLimit: config.GetInt("page_limit", controller.DefaultPageLimit),
		Logger:    logging.GetGlobal(),
		Snapshots: e.snapshots,
		OnChange:  onChange,
	})
}

// alertSink fans push alerts out to hook scripts, the console (when out is
// set) and the configured desktop backend. Only desktop alerts are deduplicated.
func (e *env) alertSink(out io.Writer) controller.Sink {
	sinks := desktop.Multi{hooks.Sink{Runner: e.hooks, Role: e.role}}
	if out != nil {
		sinks = append(sinks, desktop.NewWriterSink(out))
	}
	if config.GetBool("desktop_enabled", true) {
		native, err := desktop.FromConfig(config.Get("desktop_backend", desktop.BackendAuto), desktop.NewExecRunner(desktop.DefaultTimeout))
		if err != nil {
			colors.Warning(err.Error())
		} else {
			sinks = append(sinks, desktop.Dedup(native, dedupconfig.Load()))
		}
	}
	return desktop.Safe(sinks)
}

// connection acquires the shared push handle, or nil when headless.
func (e *env) connection() controller.Connection {
	userID := ""
	if e.session.User != nil {
		userID = e.session.User.ID
	}
	h := e.provider.Acquire(e.session.Token, userID)
	if h == nil {
		return nil
	}
	return h
}

// client implements every command client on top of a fresh env per call.
type client struct{}

func withEnv(fn func(e *env) error) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}

func (client) List(ctx context.Context, opts app.ListOptions, w io.Writer) error {
	return withEnv(func(e *env) error {
		return app.NewListUseCase(e.newController(nil, nil, nil), e.snapshots).Execute(ctx, opts, w)
	})
}

func (client) Status(ctx context.Context, opts app.StatusOptions, w io.Writer) error {
	return withEnv(func(e *env) error {
		return app.NewStatusUseCase(e.newController(nil, nil, nil), e.snapshots).Execute(ctx, opts, w)
	})
}

func (client) MarkRead(ctx context.Context, ids []string) error {
	return withEnv(func(e *env) error {
		return app.NewMarkReadUseCase(e.newController(nil, nil, nil), e.hooks).Execute(ctx, ids)
	})
}

func (client) MarkAllRead(ctx context.Context) error {
	return withEnv(func(e *env) error {
		return app.NewMarkReadUseCase(e.newController(nil, nil, nil), e.hooks).ExecuteAll(ctx)
	})
}

func (client) Delete(ctx context.Context, ids []string) error {
	return withEnv(func(e *env) error {
		return app.NewDeleteUseCase(e.newController(nil, nil, nil), e.hooks).Execute(ctx, ids)
	})
}

func (client) Clear(ctx context.Context, input app.ClearInput) error {
	return withEnv(func(e *env) error {
		return app.NewDeleteUseCase(e.newController(nil, nil, nil), e.hooks).Clear(ctx, input)
	})
}

func (client) Watch(ctx context.Context, out io.Writer) error {
	return withEnv(func(e *env) error {
		var watch *app.WatchUseCase
		ctrl := e.newController(e.alertSink(out), notice.NewDefaultCLIHandler(), func() { watch.Changed() })
		watch = app.NewWatchUseCase(ctrl)
		return watch.Execute(ctx, app.WatchOptions{Conn: e.connection(), Output: out})
	})
}

func (client) TUI(ctx context.Context) error {
	return withEnv(func(e *env) error {
		colors.DisableStructuredLogging()
		defer colors.EnableStructuredLogging()

		events := state.NewEvents()
		notices := notice.NewTUIHandler(events.Notice)
		ctrl := e.newController(e.alertSink(nil), notices, events.Changed)
		prefs, err := settings.Load()
		if err != nil {
			colors.Warning(fmt.Sprintf("using default view settings: %v", err))
			prefs = settings.DefaultSettings()
		}
		model := state.NewModel(ctrl, state.Options{
			Context:      ctx,
			Events:       events,
			Notices:      notices,
			Hook:         e.hooks,
			Settings:     prefs,
			SaveSettings: settings.Save,
		})
		if conn := e.connection(); conn != nil {
			ctrl.Mount(ctx, conn)
			defer ctrl.Unmount()
		}
		return tui.Run(ctx, model)
	})
}

func (client) Login(input app.LoginInput) error {
	store, err := credential.Open(config.Get("config_dir", ""))
	if err != nil {
		return err
	}
	_, err = app.NewLoginUseCase(store).Login(input)
	return err
}

func (client) Logout() error {
	store, err := credential.Open(config.Get("config_dir", ""))
	if err != nil {
		return err
	}
	return app.NewLoginUseCase(store).Logout()
}

func (client) Version() string {
	return version.String()
}

var appClient = client{}
