package app

import (
	"context"
	"fmt"
	"net"

	grpcadapter "dopamine-deck/internal/adapters/input/grpc"
	"dopamine-deck/internal/adapters/output/memory"
	"dopamine-deck/internal/adapters/output/postgres"
	"dopamine-deck/internal/adapters/output/static"
	"dopamine-deck/internal/config"
	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/ports"
	"dopamine-deck/internal/core/progression"
	"dopamine-deck/internal/core/service"
	dbinfra "dopamine-deck/internal/infrastructure/db"
	"dopamine-deck/internal/infrastructure/eventloop"
	"dopamine-deck/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const loopBuffer = 256

type App struct {
	*Core
	Config     *config.Config
	Log        *zap.Logger
	GRPCServer *grpc.Server
	Health     *health.Server
	Listener   net.Listener
	close      func()
}

// Core is the deck runtime shared by the gRPC server and the terminal
// client.
type Core struct {
	Loop     *eventloop.Loop
	Sessions *service.SessionManager
	Pool     *pgxpool.Pool
}

func Init(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.Init(cfg.Logger.Env)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("failed to listen grpc", zap.Error(err))
		_ = log.Sync()
		return nil, err
	}

	a, err := New(ctx, cfg, log, listener)
	if err != nil {
		_ = listener.Close()
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}

// New wires every component for cfg around an existing listener.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, listener net.Listener) (*App, error) {
	core, err := NewCore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	grpcServer := grpc.NewServer()
	grpcadapter.RegisterDeckServiceServer(grpcServer, grpcadapter.NewDeckServer(core.Sessions, log))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &App{
		Core:       core,
		Config:     cfg,
		Log:        log,
		GRPCServer: grpcServer,
		Health:     healthServer,
		Listener:   listener,
		close: func() {
			_ = listener.Close()
			core.Close()
			_ = log.Sync()
		},
	}, nil
}

// NewCore connects storage when cfg asks for it and builds the session
// manager on a fresh event loop. The loop is not started.
func NewCore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Core, error) {
	core := &Core{}
	if cfg.NeedsDatabase() {
		pool, err := dbinfra.ConnectToDB(ctx, cfg.Database.GetDSN(), log)
		if err != nil {
			log.Error("failed to connect to db", zap.Error(err))
			return nil, err
		}
		core.Pool = pool
		if err := dbinfra.Migrate(ctx, pool, log); err != nil {
			log.Error("failed to migrate db", zap.Error(err))
			core.Close()
			return nil, err
		}
	}

	source, err := taskSource(ctx, cfg, core.Pool, log)
	if err != nil {
		log.Error("failed to init task source", zap.Error(err))
		core.Close()
		return nil, err
	}

	core.Loop = eventloop.New(loopBuffer, log)
	core.Sessions, err = service.NewSessionManager(service.SessionManagerParams{
		Executor:  core.Loop,
		Scheduler: eventloop.ForLoop(core.Loop),
		Source:    source,
		Journal:   resolutionJournal(cfg, core.Pool, log),
		Notifier: ports.NotifierFunc(func(n entities.Notification) {
			log.Debug("usecase: notification", zap.String("kind", string(n.Kind)), zap.String("task_id", n.TaskID))
		}),
		GoalRule:  progression.ParseGoalRule(cfg.Deck.DailyGoalRule),
		FeedLimit: cfg.Deck.FeedLimit,
		Log:       log,
	})
	if err != nil {
		log.Error("failed to init session manager", zap.Error(err))
		core.Close()
		return nil, err
	}

	log.Info("deck core wired",
		zap.String("deck_source", cfg.Deck.Source),
		zap.String("journal", cfg.Deck.Journal),
		zap.String("goal_rule", cfg.Deck.DailyGoalRule),
	)
	return core, nil
}

func (c *Core) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// Run starts the event loop and serves gRPC until the listener closes.
func (a *App) Run(ctx context.Context) error {
	go a.Loop.Run(ctx)
	a.Log.Info("grpc server started", zap.String("addr", a.Listener.Addr().String()))
	return a.GRPCServer.Serve(a.Listener)
}

// Shutdown ends open sessions, which also ends their watch streams, then
// drains gRPC and stops the loop.
func (a *App) Shutdown(ctx context.Context) {
	a.Health.Shutdown()
	a.Sessions.Close(ctx)
	a.GRPCServer.GracefulStop()
	a.Loop.Stop()
}

func (a *App) Close() {
	if a == nil || a.close == nil {
		return
	}
	a.close()
}

func taskSource(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) (ports.TaskSource, error) {
	if cfg.Deck.Source != config.SourcePostgres {
		return static.NewTaskSource(nil), nil
	}
	source := postgres.NewTaskSource(pool, log)
	for i, spec := range static.DefaultDeck {
		task := entities.NewTaskFromDuration(spec.ID, spec.Title, spec.Emoji, spec.Category, spec.Duration)
		if err := source.SeedTask(ctx, task, spec.Duration, i); err != nil {
			return nil, err
		}
	}
	return source, nil
}

func resolutionJournal(cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) ports.ResolutionJournal {
	switch cfg.Deck.Journal {
	case config.JournalPostgres:
		uow := dbinfra.NewUnitOfWorkManager(pool, log, postgres.Repositories(log))
		return postgres.NewJournal(uow, log)
	case config.JournalOff:
		return nil
	default:
		return memory.NewJournal(log)
	}
}
