// Command leadscout-scheduler runs the saved search worker and its
// maintenance subcommands against the shared lead store
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"leadscout/internal/adapters/overpass"
	"leadscout/internal/adapters/places"
	"leadscout/internal/core/version"
	"leadscout/internal/modkit"
	"leadscout/internal/modkit/module"
	"leadscout/internal/modkit/repokit"
	"leadscout/internal/platform/config"
	"leadscout/internal/platform/logger"
	"leadscout/internal/platform/store"
	"leadscout/migrations"

	leadsmod "leadscout/internal/services/leads/module"
	scheddom "leadscout/internal/services/scheduler/domain"
	schedmod "leadscout/internal/services/scheduler/module"
)

func main() {
	// local dev convenience, absent file is fine
	_ = godotenv.Load()

	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")

	l := logger.Get()
	bi := version.Info("leadscout-scheduler")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting")

	dbURL := dbCfg.MustString("DBURL")
	st, err := store.Open(context.Background(), store.Config{
		AppName: "leadscout-scheduler",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbURL,
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
		RDS: store.RedisConfig{
			Enabled: rdsCfg.MayBool("ENABLED", false),
			Addr:    rdsCfg.MayString("ADDR", "localhost:6379"),
			DB:      rdsCfg.MayInt("DB", 0),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	repokit.MustGuard(context.Background(), st)

	if err := store.Migrate(migrations.FS, ".", dbURL, *l); err != nil {
		l.Panic().Err(err).Msg("migrations failed")
	}

	var (
		fMode = flag.String("mode", "worker",
			"scheduler mode: worker | create | runnow | rescore | list | logs | stats")
		fID        = flag.String("id", "", "saved search id (runnow, logs)")
		fTick      = flag.Duration("tick", 0, "worker poll cadence, 0 uses SCHEDULER_TICK_EVERY")
		fName      = flag.String("name", "", "saved search name (create)")
		fParams    = flag.String("params", "", `params JSON, e.g. {"kind":"text","text":{"query":"cafes in braga"}} (create)`)
		fInterval  = flag.Int("interval", 24, "run cadence in hours (create)")
		fNotify    = flag.Bool("notify", false, "notify when a run finds new leads (create)")
		fThreshold = flag.Int("threshold", 0, "high score cutoff, 0 uses the service default (create)")
	)
	flag.Parse()

	deps := modkit.Deps{
		Cfg: root,
		Log: *l,
		PG:  st.PG,
		RDS: st.RDS,
	}

	lm := leadsmod.New(deps, leadsmod.Options{})
	module.Register(lm.Name(), lm.Ports())
	leadPorts, ok := module.PortsAs[leadsmod.Ports](lm.Name())
	if !ok {
		l.Panic().Msg("leads ports missing from registry")
	}

	sm := schedmod.New(
		deps,
		schedmod.Options{TickEvery: *fTick},
		buildClients(root, st, l),
		modkit.WithPorts(scheddom.Ports{
			Ingestor: leadPorts.Ingestor,
			Curator:  leadPorts.Curator,
		}),
	)
	module.Register(sm.Name(), sm.Ports())
	schedPorts, ok := module.PortsAs[schedmod.Ports](sm.Name())
	if !ok {
		l.Panic().Msg("scheduler ports missing from registry")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *fMode {
	case "worker":
		if err := schedPorts.Runner.Worker(ctx); err != nil && ctx.Err() == nil {
			l.Fatal().Err(err).Msg("scheduler worker failed")
		}

	case "create":
		if *fParams == "" {
			l.Fatal().Msg("create requires -params")
		}
		p, err := scheddom.DecodeParams(json.RawMessage(*fParams))
		if err != nil {
			l.Fatal().Err(err).Msg("bad -params")
		}
		def, err := schedPorts.Admin.Create(ctx, scheddom.CreateInput{
			Name:            *fName,
			Params:          p,
			IntervalHours:   *fInterval,
			NotifyOnNew:     *fNotify,
			NotifyThreshold: *fThreshold,
		})
		if err != nil {
			l.Fatal().Err(err).Msg("create failed")
		}
		printJSON(def)

	case "runnow":
		if *fID == "" {
			l.Fatal().Msg("runnow requires -id")
		}
		res, err := schedPorts.Runner.RunNow(ctx, *fID)
		if err != nil {
			l.Fatal().Err(err).Msg("runnow failed")
		}
		printJSON(res)

	case "rescore":
		res, err := leadPorts.Curator.RescoreAll(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("rescore failed")
		}
		printJSON(res)

	case "list":
		defs, err := schedPorts.Admin.List(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("list failed")
		}
		printJSON(defs)

	case "logs":
		if *fID == "" {
			l.Fatal().Msg("logs requires -id")
		}
		logs, err := schedPorts.Reporter.Logs(ctx, *fID, 50)
		if err != nil {
			l.Fatal().Err(err).Msg("logs failed")
		}
		printJSON(logs)

	case "stats":
		stats, err := schedPorts.Reporter.Stats(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("stats failed")
		}
		printJSON(stats)

	default:
		l.Fatal().Str("mode", *fMode).Msg("unknown mode")
	}
}

// buildClients wires the provider clients from env. A missing API key
// leaves that provider out; the runner reports it if a search needs it
func buildClients(root config.Conf, st *store.Store, l *logger.Logger) schedmod.Clients {
	var clients schedmod.Clients

	pl := root.Prefix("PLACES_")
	if key := pl.MayString("API_KEY", ""); key != "" {
		clients.Searcher = places.NewClient(places.Options{
			APIKey:      key,
			Language:    pl.MayString("LANGUAGE", "pt"),
			MaxInFlight: pl.MayInt("MAX_IN_FLIGHT", 5),
			MaxRetries:  pl.MayInt("MAX_RETRIES", 3),
		})
	} else {
		l.Warn().Msg("PLACES_API_KEY unset, text and nearby searches disabled")
	}

	op := root.Prefix("OVERPASS_")
	clients.Tags = overpass.NewClient(overpass.Options{
		QueryTimeout: time.Duration(op.MayInt("QUERY_TIMEOUT_S", 180)) * time.Second,
		MaxRetries:   op.MayInt("MAX_RETRIES", 3),
		GeocodeCache: st.RDS,
		CountryCodes: op.MayString("COUNTRY_CODES", "pt"),
	})
	return clients
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}
