package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/fieldmarshal/career-league/internal/config"
	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/fieldmarshal/career-league/internal/domain/match"
	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/domain/transfer"
	"github.com/fieldmarshal/career-league/internal/infrastructure/identity"
	"github.com/fieldmarshal/career-league/internal/infrastructure/notify"
	"github.com/fieldmarshal/career-league/internal/infrastructure/repository/memory"
	"github.com/fieldmarshal/career-league/internal/infrastructure/repository/postgres"
	"github.com/fieldmarshal/career-league/internal/interfaces/httpapi"
	"github.com/fieldmarshal/career-league/internal/observability"
	"github.com/fieldmarshal/career-league/internal/platform/cache"
	idgen "github.com/fieldmarshal/career-league/internal/platform/id"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
	"github.com/fieldmarshal/career-league/internal/platform/prompt"
	"github.com/fieldmarshal/career-league/internal/platform/resilience"
	"github.com/fieldmarshal/career-league/internal/usecase"
)

type repositories struct {
	seasons   season.Repository
	teams     team.Repository
	players   player.Repository
	fixtures  fixture.Repository
	matches   match.Repository
	transfers transfer.Repository
}

// App owns the HTTP server, the background game loop, and every shutdown
// hook collected during wiring. Shutdown runs the hooks in reverse order.
type App struct {
	Server *http.Server

	cfg    config.Config
	logger *slog.Logger

	windows    *usecase.WindowService
	retirement *usecase.RetirementService
	teams      *usecase.TeamService

	loopCancel context.CancelFunc
	loopWG     conc.WaitGroup

	shutdowns []func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	zlog := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(zlog)

	a := &App{cfg: cfg, logger: logger}

	uptraceShutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	a.shutdowns = append(a.shutdowns, uptraceShutdown)

	pyroscopeStop, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) error { return pyroscopeStop() })

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("start pprof: %w", err)
	}
	if pprofSrv != nil {
		a.shutdowns = append(a.shutdowns, func(context.Context) error {
			return observability.StopPprofServer(pprofSrv, logger, 5*time.Second)
		})
	}

	repos, err := a.buildRepositories(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	verifier, err := a.buildVerifier()
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	notifier, err := a.buildNotifier(zlog)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	ids := idgen.NewRandomGenerator()
	broker := prompt.NewBroker()
	prompter := prompt.NewChoicePrompter(broker, ids)

	var strengths *cache.Store
	if cfg.CacheEnabled {
		strengths = cache.NewStore(cfg.CacheTTL)
	}

	schedule := usecase.NewScheduleService(repos.teams, repos.fixtures, ids, usecase.ScheduleConfig{
		MatchDays:    cfg.MatchDays,
		MatchHourUTC: cfg.MatchHourUTC,
	}, zlog)
	simulation := usecase.NewSimulationService(repos.teams, repos.players, repos.fixtures, strengths, nil, usecase.SimulationConfig{
		MaxWorkers: cfg.SimulationMaxWorkers,
	}, zlog)
	career := usecase.NewCareerService(repos.seasons, repos.players, repos.teams, schedule, ids, nil, usecase.CareerConfig{
		StartingAge:    cfg.CareerStartingAge,
		StartingLeague: cfg.CareerStartingLeague,
		StartingWage:   cfg.CareerStartingWage,
	}, zlog)
	teams := usecase.NewTeamService(repos.seasons, repos.teams, repos.fixtures, zlog)
	matches := usecase.NewMatchService(repos.fixtures, repos.matches, repos.players, repos.teams, prompter, notifier, ids, nil, usecase.MatchConfig{
		MinEvents:       cfg.MatchMinEvents,
		MaxEvents:       cfg.MatchMaxEvents,
		DecisionTimeout: cfg.MatchDecisionTimeout,
	}, zlog)
	transfers := usecase.NewTransferService(repos.seasons, repos.players, repos.teams, repos.transfers, ids, nil, usecase.TransferConfig{
		MinOffers:        cfg.TransferMinOffers,
		MaxOffers:        cfg.TransferMaxOffers,
		OfferTTLWeeks:    cfg.TransferOfferTTLWeeks,
		WinterWeek:       cfg.TransferWinterWeek,
		ReOfferChancePct: cfg.TransferReOfferChancePct,
	}, zlog)
	retirement := usecase.NewRetirementService(repos.players, repos.teams, ids, nil, usecase.RetirementConfig{
		RetirementAge:     cfg.RetirementAge,
		RegenAge:          cfg.RegenAge,
		PurgeAfterSeasons: cfg.RetirementPurgeAfterSeasons,
	}, zlog)
	windows := usecase.NewWindowService(
		repos.seasons,
		repos.fixtures,
		repos.matches,
		repos.players,
		schedule,
		simulation,
		transfers,
		retirement,
		notifier,
		usecase.WindowConfig{
			TotalWeeks:      cfg.SeasonTotalWeeks,
			WindowHours:     cfg.WindowHours,
			Tolerance:       cfg.WindowTolerance,
			ClosingSoonLead: cfg.WindowClosingSoonLead,
			TransferWeeks:   transferWeekSet(cfg.TransferWeeks),
		},
		zlog,
	)

	a.windows = windows
	a.retirement = retirement
	a.teams = teams

	handler := httpapi.NewHandler(career, teams, matches, transfers, windows, retirement, broker, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if a.Server.Addr == "" {
		a.close(ctx)
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return a, nil
}

// transferWeekSet keeps nil for an empty list so the service default set
// applies.
func transferWeekSet(weeks []int) map[int]struct{} {
	if len(weeks) == 0 {
		return nil
	}
	set := make(map[int]struct{}, len(weeks))
	for _, week := range weeks {
		set[week] = struct{}{}
	}
	return set
}

func (a *App) buildRepositories(ctx context.Context) (repositories, error) {
	switch a.cfg.StorageDriver {
	case config.StorageMemory:
		return repositories{
			seasons:   memory.NewSeasonRepository(),
			teams:     memory.NewTeamRepository(memory.SeedTeams()),
			players:   memory.NewPlayerRepository(memory.SeedPlayers()),
			fixtures:  memory.NewFixtureRepository(),
			matches:   memory.NewMatchRepository(),
			transfers: memory.NewTransferRepository(),
		}, nil
	case config.StoragePostgres:
		db, err := openPostgres(ctx, a.cfg)
		if err != nil {
			return repositories{}, err
		}
		a.shutdowns = append(a.shutdowns, func(context.Context) error { return db.Close() })

		if err := postgres.Seed(ctx, db, memory.SeedTeams(), memory.SeedPlayers()); err != nil {
			return repositories{}, fmt.Errorf("seed league data: %w", err)
		}

		return repositories{
			seasons:   postgres.NewSeasonRepository(db),
			teams:     postgres.NewTeamRepository(db),
			players:   postgres.NewPlayerRepository(db),
			fixtures:  postgres.NewFixtureRepository(db),
			matches:   postgres.NewMatchRepository(db),
			transfers: postgres.NewTransferRepository(db),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported storage driver %q", a.cfg.StorageDriver)
	}
}

func (a *App) buildVerifier() (httpapi.TokenVerifier, error) {
	switch a.cfg.IdentityMode {
	case config.IdentityModeStatic:
		verifier, err := identity.NewStaticTokenVerifier(a.cfg.StaticAuthTokens)
		if err != nil {
			return nil, fmt.Errorf("build static verifier: %w", err)
		}
		return verifier, nil
	case config.IdentityModeHTTP:
		return identity.NewClient(
			&http.Client{Timeout: a.cfg.IdentityTimeout},
			a.cfg.IdentityBaseURL,
			a.cfg.IdentityIntrospectPath,
			a.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported identity mode %q", a.cfg.IdentityMode)
	}
}

func (a *App) buildNotifier(zlog *logging.Logger) (usecase.Notifier, error) {
	if !a.cfg.WebhookEnabled {
		return usecase.NewNoopNotifier(), nil
	}

	notifier, err := notify.NewWebhookNotifier(notify.WebhookConfig{
		URL:       a.cfg.WebhookURL,
		AuthToken: a.cfg.WebhookToken,
		Timeout:   a.cfg.WebhookTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          a.cfg.WebhookCircuitEnabled,
			FailureThreshold: a.cfg.WebhookCircuitFailureCount,
			OpenTimeout:      a.cfg.WebhookCircuitOpenTimeout,
			HalfOpenMaxReq:   a.cfg.WebhookCircuitHalfOpenMaxReq,
		},
	}, zlog)
	if err != nil {
		return nil, fmt.Errorf("build webhook notifier: %w", err)
	}

	return notifier, nil
}

// StartBackground launches the window tick and retirement sweep loops. Both
// run until Shutdown; a failing pass logs and waits for the next interval.
func (a *App) StartBackground() {
	loopCtx, cancel := context.WithCancel(context.Background())
	a.loopCancel = cancel

	a.loopWG.Go(func() { a.runWindowTicks(loopCtx) })
	a.loopWG.Go(func() { a.runRetirementSweeps(loopCtx) })
}

func (a *App) runWindowTicks(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.WindowTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := a.windows.Tick(ctx)
			if err != nil {
				a.logger.Error("window tick failed", "error", err)
				continue
			}
			a.logger.Debug("window tick",
				"action", result.Action,
				"season", result.Season,
				"week", result.Week,
			)
		}
	}
}

func (a *App) runRetirementSweeps(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.RetirementSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state, err := a.teams.Status(ctx)
			if err != nil {
				a.logger.Error("retirement sweep skipped, season state unavailable", "error", err)
				continue
			}
			if !state.Started {
				continue
			}
			result, err := a.retirement.Sweep(ctx, state.SeasonID)
			if err != nil {
				a.logger.Error("retirement sweep failed", "error", err)
				continue
			}
			a.logger.Info("retirement sweep",
				"retired", result.Retired,
				"regens", result.Regens,
				"purged", result.Purged,
			)
		}
	}
}

// Shutdown stops the background loops, drains the HTTP server, and runs the
// collected hooks newest first.
func (a *App) Shutdown(ctx context.Context) error {
	if a.loopCancel != nil {
		a.loopCancel()
		a.loopWG.Wait()
	}

	var firstErr error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}

	if err := a.close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

func (a *App) close(ctx context.Context) error {
	var firstErr error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			a.logger.Error("shutdown hook failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	a.shutdowns = nil
	return firstErr
}
