package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/MrSnakeDoc/delicious2fluid/internal/config"
	"github.com/MrSnakeDoc/delicious2fluid/internal/fluiddb"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
	"github.com/MrSnakeDoc/delicious2fluid/internal/redis"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/memstore"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sources/delicious"
	redisstore "github.com/MrSnakeDoc/delicious2fluid/internal/store/redis"
	"github.com/MrSnakeDoc/delicious2fluid/internal/syncer"
	"github.com/MrSnakeDoc/delicious2fluid/internal/utils"
	"github.com/MrSnakeDoc/delicious2fluid/internal/version"
)

// ErrJournalDisabled is returned by Status when no journal is configured.
var ErrJournalDisabled = errors.New("run journal not configured (set journal.redis_addr)")

// ErrPartialImport is returned by Import when records failed to sync under
// continue-on-error. The result and its report are still returned.
var ErrPartialImport = errors.New("some records failed to sync")

type App struct {
	cfg    *config.Config
	logger logger.Logger
}

// New builds the logger described by cfg and returns the application.
func New(cfg *config.Config) (*App, error) {
	loggerClient, err := logger.NewWithOptions(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.PrettyLog,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewWithLogger(cfg, loggerClient), nil
}

// NewWithLogger returns the application with an existing logger.
func NewWithLogger(cfg *config.Config, loggerClient logger.Logger) *App {
	loggerClient.Debugf("cfg: %+v", cfg.Redacted())
	return &App{cfg: cfg, logger: loggerClient}
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger { return a.logger }

// Close flushes buffered log entries.
func (a *App) Close() {
	_ = a.logger.Sync()
}

func userAgent() string {
	return "delicious2fluid/" + version.Version
}

// ─────────────────────────────────────────────────────────────────
// import
// ─────────────────────────────────────────────────────────────────

// ImportOptions are the per-invocation knobs of an import.
type ImportOptions struct {
	File   string // overrides delicious.file
	Root   string // overrides fluiddb.root
	DryRun bool   // parse only, never touch the destination
}

// ImportResult summarizes an import.
type ImportResult struct {
	Source  string           `json:"source"`
	Format  delicious.Format `json:"format"`
	Tags    int              `json:"tags"`
	Records int              `json:"records"`
	Skipped int              `json:"skipped_private"`
	Report  *syncer.Report   `json:"report,omitempty"` // nil on dry runs
}

// Import fetches (or loads) the export, parses it and syncs it to FluidDB.
// A report is journaled whether the sync succeeded or not.
func (a *App) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	cfg := *a.cfg
	if opts.File != "" {
		cfg.Delicious.File = opts.File
	}
	if opts.Root != "" {
		cfg.FluidDB.Root = config.NormalizeRoot(opts.Root)
	}
	if err := cfg.ValidateImport(opts.DryRun); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	doc, source, err := a.readExport(ctx, cfg)
	if err != nil {
		return nil, err
	}

	parsed, err := delicious.ParseAny(doc, delicious.ParseOptions{SkipPrivate: cfg.Import.SkipPrivate})
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Source:  source,
		Format:  delicious.Detect(doc),
		Tags:    parsed.Tags.Len(),
		Records: len(parsed.Records),
		Skipped: parsed.Skipped,
	}
	a.logger.Info("parsed export",
		logger.String("source", source),
		logger.String("format", result.Format.String()),
		logger.Int("tags", result.Tags),
		logger.Int("records", result.Records),
		logger.Int("skipped_private", result.Skipped))

	if opts.DryRun {
		a.logger.Info("dry run, destination untouched")
		return result, nil
	}

	layout, err := syncer.ParseTagLayout(cfg.FluidDB.TagLayout)
	if err != nil {
		return nil, err
	}

	client := fluiddb.New(fluiddb.Options{
		BaseURL:   cfg.FluidDB.URL,
		Username:  cfg.FluidDB.Username,
		Password:  cfg.FluidDB.Password,
		UserAgent: userAgent(),
		Timeout:   cfg.HTTPTimeout,
	}, a.logger)

	s := syncer.New(client, a.logger, syncer.Options{
		Layout:          syncer.Layout{Root: cfg.FluidDB.Root, Tags: layout},
		ContinueOnError: cfg.Import.ContinueOnError,
	})

	a.logger.Info("syncing to fluiddb",
		logger.String("instance", client.BaseURL()),
		logger.String("root", cfg.FluidDB.Root))

	report, runErr := s.Run(ctx, parsed.Tags, parsed.Records)
	result.Report = report
	a.journal(ctx, report)

	if runErr != nil {
		return result, fmt.Errorf("sync failed: %w", runErr)
	}
	if len(report.Failed) > 0 {
		return result, fmt.Errorf("%w: %d of %d records", ErrPartialImport, len(report.Failed), result.Records)
	}
	return result, nil
}

func (a *App) readExport(ctx context.Context, cfg config.Config) ([]byte, string, error) {
	if cfg.Delicious.File != "" {
		a.logger.Info("loading export file", logger.String("file", cfg.Delicious.File))
		doc, err := delicious.NewLoader(cfg.Delicious.File).Load()
		if err != nil {
			return nil, "", err
		}
		return doc, cfg.Delicious.File, nil
	}

	client := delicious.NewClient(delicious.ClientOptions{
		BaseURL:   cfg.Delicious.URL,
		Username:  cfg.Delicious.Username,
		Password:  cfg.Delicious.Password,
		UserAgent: userAgent(),
		Timeout:   cfg.HTTPTimeout,
	}, a.logger)

	doc, err := client.FetchAll(ctx)
	if err != nil {
		return nil, "", err
	}
	return doc, cfg.Delicious.URL, nil
}

// ─────────────────────────────────────────────────────────────────
// journal
// ─────────────────────────────────────────────────────────────────

func (a *App) openJournal(ctx context.Context) (*redisstore.Store, func(), error) {
	j := a.cfg.Journal
	client, err := redis.New(ctx, redis.ConnectOptions{
		Addr:           j.RedisAddr,
		User:           j.RedisUsername,
		Password:       j.RedisPassword,
		RedisDB:        j.RedisDB,
		ConnectTimeout: j.ConnectTimeout,
		RetryInterval:  j.RetryInterval,
		MaxWait:        j.MaxWait,
		PingTimeout:    j.PingTimeout,
		WarnThreshold:  j.WarnThreshold,
	}, a.logger)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() { utils.MustClose(client, a.logger, "run journal") }
	return redisstore.NewStore(client), closeFn, nil
}

// journal records report. Failures are logged and never fail the import.
func (a *App) journal(ctx context.Context, report *syncer.Report) {
	if report == nil || !a.cfg.Journal.Enabled() {
		return
	}

	// An interrupted run is journaled too.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*a.cfg.Journal.ConnectTimeout)
	defer cancel()

	store, closeFn, err := a.openJournal(ctx)
	if err != nil {
		a.logger.Warn("run journal unavailable, report not saved", logger.Error(err))
		return
	}
	defer closeFn()

	if err := store.SaveRun(ctx, report); err != nil {
		a.logger.Warn("failed to journal run report", logger.Error(err))
		return
	}
	if err := store.SaveObjects(ctx, report.Root, report.Objects); err != nil {
		a.logger.Warn("failed to journal object ids", logger.Error(err))
		return
	}
	a.logger.Info("run journaled",
		logger.String("key", redisstore.RunKey(report.Root)),
		logger.Int("objects", len(report.Objects)))
}

// StatusOptions selects what Status reports on.
type StatusOptions struct {
	Root string // configured root when empty
	URL  string // optional bookmark URL to look up in the object map
}

// StatusResult is the journaled state of a root namespace.
type StatusResult struct {
	Root     string         `json:"root"`
	Report   *syncer.Report `json:"report,omitempty"`
	Objects  int64          `json:"objects"`
	Roots    []string       `json:"roots"`
	URL      string         `json:"url,omitempty"`
	ObjectID string         `json:"object_id,omitempty"`
}

// Status reads the last journaled run for a root namespace and, when
// opts.URL is set, the FluidDB object id recorded for that URL.
func (a *App) Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	if !a.cfg.Journal.Enabled() {
		return nil, ErrJournalDisabled
	}
	root := config.NormalizeRoot(opts.Root)
	if root == "" {
		root = a.cfg.FluidDB.Root
	}

	store, closeFn, err := a.openJournal(ctx)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	roots, err := store.Roots(ctx)
	if err != nil {
		return nil, err
	}
	result := &StatusResult{Root: root, Roots: roots, URL: opts.URL}

	if opts.URL != "" {
		id, ok, err := store.ObjectID(ctx, root, opts.URL)
		if err != nil {
			return nil, err
		}
		if ok {
			result.ObjectID = id
		}
	}

	report, err := store.LastRun(ctx, root)
	if err != nil {
		if errors.Is(err, redisstore.ErrNoRun) {
			return result, nil
		}
		return nil, err
	}
	result.Report = report

	if result.Objects, err = store.ObjectCount(ctx, root); err != nil {
		return nil, err
	}
	return result, nil
}

// ─────────────────────────────────────────────────────────────────
// sandbox
// ─────────────────────────────────────────────────────────────────

// RunSandbox serves the in-memory FluidDB on the configured address until ctx ends.
func (a *App) RunSandbox(ctx context.Context, listen string) error {
	if listen == "" {
		listen = a.cfg.Sandbox.Listen
	}
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listen, err)
	}
	return a.ServeSandbox(ctx, ln)
}

// ServeSandbox serves the in-memory FluidDB on ln until ctx ends.
func (a *App) ServeSandbox(ctx context.Context, ln net.Listener) error {
	users := a.cfg.SandboxUsers()
	store := memstore.NewMemoryStore(sandboxNamespaces(users, a.cfg.FluidDB.Root)...)

	server := sandbox.New(ln.Addr().String(), a.logger, deps.Deps{
		Logger:    a.logger,
		Store:     store,
		StartTime: time.Now(),
		Version:   version.Version,
		Users:     users,
		TimeNow:   time.Now,
	})

	a.logger.Infof("🧪 Starting sandbox %s (commit=%s, go=%s)", version.Version, version.Commit, version.GoVersion)
	if len(users) == 0 {
		a.logger.Warn("sandbox has no users configured, authentication disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil {
			errCh <- fmt.Errorf("sandbox server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Sandbox.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop sandbox: %w", err)
	}

	a.logger.Info("✅ Sandbox stopped cleanly",
		logger.Int("objects", store.ObjectCount()))
	return nil
}

// sandboxNamespaces lists the top-level namespaces to pre-create: one per user
// plus the first segment of the configured root.
func sandboxNamespaces(users map[string]string, root string) []string {
	names := make([]string, 0, len(users)+1)
	for name := range users {
		names = append(names, name)
	}
	if top, _, _ := strings.Cut(root, "/"); top != "" {
		if _, ok := users[top]; !ok {
			names = append(names, top)
		}
	}
	return names
}
