package main

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blastyard/arena-server/internal/arena"
	"github.com/blastyard/arena-server/internal/bots"
	"github.com/blastyard/arena-server/internal/config"
	"github.com/blastyard/arena-server/internal/hazard"
	"github.com/blastyard/arena-server/internal/httpapi"
	"github.com/blastyard/arena-server/internal/ledger"
	"github.com/blastyard/arena-server/internal/round"
	"github.com/blastyard/arena-server/internal/session"
	"github.com/blastyard/arena-server/internal/team"
	"github.com/blastyard/arena-server/internal/world"
	"github.com/blastyard/arena-server/internal/ws"
)

func main() {
	_ = godotenv.Load()

	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	teams, err := team.NewRegistry(cfg.Teams)
	if err != nil {
		log.Fatal("invalid team configuration", zap.Error(err))
	}

	bounds, err := arena.ComputeBounds(cfg.Field, cfg.Ceiling, cfg.SpawnMargin)
	if err != nil {
		log.Fatal("invalid arena geometry", zap.Error(err))
	}
	planner := arena.NewPlanner(bounds, arena.PlanConfig{
		PerPlayerRate: cfg.HazardRate,
		BaseOffset:    cfg.HazardBase,
		AbsoluteCap:   cfg.HazardCap,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := session.NewTracker(ctx, teams)
	field := hazard.NewField()
	wrld := world.New(spawnAreas(cfg.Field, teams), cfg.RespawnDelay)
	surfaces := ws.NewSurfaceHub()
	botCtl := bots.NewController(log)

	var rewards round.Ledger = ledger.NewMemory()
	if cfg.DatabaseURL != "" {
		g, err := ledger.OpenGorm(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("ledger database unavailable", zap.Error(err))
		}
		rewards = g
	}

	loop := round.NewLoop(round.Config{
		Intermission: cfg.Intermission,
		RoundTime:    cfg.RoundTime,
		Tick:         cfg.Tick,
		SettleDelay:  cfg.SettleDelay,
		ReadDelay:    cfg.ReadDelay,
		CleanupDelay: cfg.CleanupDelay,
		WinnerReward: cfg.WinnerReward,
		LoserReward:  cfg.LoserReward,
	}, round.Deps{
		Tracker: tracker,
		Teams:   teams,
		Planner: planner,
		Pos:     wrld,
		Chars:   wrld,
		Surface: surfaces,
		Hazards: field,
		Ledger:  rewards,
		Bots:    botCtl,
		Log:     log,
	})

	join := round.NewJoinHandler(tracker, wrld, wrld, surfaces, cfg.SettleDelay, log)

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Loop:    loop,
		Tracker: tracker,
		Teams:   teams,
		Field:   field,
		WS: ws.Handler(ws.Deps{
			Tracker:  tracker,
			Join:     join,
			World:    wrld,
			Surfaces: surfaces,
			Log:      log,
		}),
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loop.Run(ctx)
		return nil
	})
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

// spawnAreas lays the lobby at the field's center, raised well above play,
// and spreads team areas evenly on a circle inside the field footprint.
func spawnAreas(field arena.Region, teams *team.Registry) map[string]arena.Vec3 {
	center := arena.Vec3{
		X: (field.Min.X + field.Max.X) / 2,
		Y: field.Max.Y,
		Z: (field.Min.Z + field.Max.Z) / 2,
	}
	areas := map[string]arena.Vec3{
		round.AreaFor(team.Lobby): {X: center.X, Y: field.Max.Y + 128, Z: center.Z},
	}
	radius := math.Min(field.Max.X-field.Min.X, field.Max.Z-field.Min.Z) / 4
	active := teams.Active()
	for i, t := range active {
		angle := 2 * math.Pi * float64(i) / float64(len(active))
		areas[round.AreaFor(t)] = arena.Vec3{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y,
			Z: center.Z + radius*math.Sin(angle),
		}
	}
	return areas
}
