package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/endless-mines/internal/config"
	"github.com/vancomm/endless-mines/internal/database"
	"github.com/vancomm/endless-mines/internal/leaderboard"
	"github.com/vancomm/endless-mines/internal/metrics"
	"github.com/vancomm/endless-mines/internal/middleware"
	"github.com/vancomm/endless-mines/internal/mines"
	"github.com/vancomm/endless-mines/internal/repository"
	"github.com/vancomm/endless-mines/internal/sessionlock"
)

const (
	lockExpiry  = 10 * time.Second
	warmEntries = 100
)

type App struct {
	log     *logrus.Logger
	router  *http.ServeMux
	server  *config.Server
	params  mines.Params
	db      *pgxpool.Pool
	redis   *redis.Client
	repo    *repository.Queries
	locker  sessionlock.Locker
	board   leaderboard.Board
	cookies *config.Cookies
	ws      *config.WebSocket
	metrics *metrics.Metrics
}

func New(log *logrus.Logger) *App {
	return &App{
		log:     log,
		router:  http.NewServeMux(),
		metrics: metrics.New(),
	}
}

func (a *App) setup(ctx context.Context) error {
	var err error

	if a.server, err = config.NewServer(); err != nil {
		return err
	}
	if a.params, err = config.NewGame(); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"mine_probability": a.params.MineProbability,
		"starting_lives":   a.params.StartingLives,
		"life_bonus":       a.params.LifeBonus,
		"flood_cap":        a.params.FloodCap,
		"safe_radius":      a.params.SafeRadius,
	}).Info("game parameters")

	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}
	if a.cookies, err = config.NewCookies(jwt); err != nil {
		return err
	}
	if a.ws, err = config.NewWebSocket(); err != nil {
		return err
	}

	if a.db, err = database.ConnectAndMigrate(ctx); err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.repo = repository.New(a.db)

	return a.setupRedis(ctx)
}

// setupRedis shares locks and the leaderboard between instances when
// REDIS_URL is set, and keeps both in process otherwise.
func (a *App) setupRedis(ctx context.Context) error {
	opts, err := config.NewRedis()
	if err != nil {
		return err
	}
	if opts == nil {
		a.log.Info("REDIS_URL not set, using in-process session locks")
		a.locker = sessionlock.NewLocal()
		a.board = leaderboard.NewPostgres(a.repo)
		return nil
	}

	a.redis = redis.NewClient(opts)
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("unable to reach redis: %w", err)
	}
	a.locker = sessionlock.NewRedis(a.redis, lockExpiry)
	board := leaderboard.NewRedis(a.redis)
	a.board = board

	n, err := leaderboard.Warm(ctx, board, a.repo, warmEntries)
	if err != nil {
		a.log.WithError(err).Warn("unable to warm leaderboard")
	} else {
		a.log.WithField("entries", n).Info("leaderboard warmed")
	}
	return nil
}

func (a *App) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("unable to close redis client")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

func (a *App) handler() http.Handler {
	var h http.Handler = a.router
	if a.server.BasePath != "" {
		h = http.StripPrefix(a.server.BasePath, h)
	}
	return middleware.Wrap(
		h,
		middleware.Auth(a.log, a.cookies),
		middleware.Cors(a.server.AllowedOrigins),
		middleware.Logging(a.log),
	)
}

// Start serves until ctx is done, then shuts down gracefully.
func (a *App) Start(ctx context.Context) error {
	defer a.close()
	if err := a.setup(ctx); err != nil {
		return err
	}
	a.loadRoutes()

	server := &http.Server{
		Addr:              a.server.Addr,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.WithField("addr", a.server.Addr).Info("server listening")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
