// Command leadscout-search runs one-shot provider searches into the lead
// store and queries the stored leads
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"leadscout/internal/adapters/overpass"
	"leadscout/internal/adapters/places"
	"leadscout/internal/core/version"
	"leadscout/internal/modkit"
	"leadscout/internal/modkit/module"
	"leadscout/internal/platform/config"
	"leadscout/internal/platform/logger"
	"leadscout/internal/platform/store"
	"leadscout/migrations"

	ldomain "leadscout/internal/services/leads/domain"
	"leadscout/internal/services/leads/ingest"
	leadsmod "leadscout/internal/services/leads/module"
)

func main() {
	_ = godotenv.Load()

	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()
	bi := version.Info("leadscout-search")
	l.Debug().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting")

	dbURL := dbCfg.MustString("DBURL")
	st, err := store.Open(context.Background(), store.Config{
		AppName: "leadscout-search",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbURL,
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
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

	if err := store.Migrate(migrations.FS, ".", dbURL, *l); err != nil {
		l.Panic().Err(err).Msg("migrations failed")
	}

	var (
		fMode     = flag.String("mode", "text", "search mode: text | nearby | osm | leads")
		fQuery    = flag.String("query", "", "free-text query (text mode)")
		fLat      = flag.Float64("lat", 0, "latitude (nearby mode, optional bias for text)")
		fLng      = flag.Float64("lng", 0, "longitude (nearby mode, optional bias for text)")
		fRadius   = flag.Float64("radius", 5000, "radius in meters")
		fType     = flag.String("type", "", "place type filter, e.g. restaurant")
		fArea     = flag.String("area", "", "named or geocodable area (osm mode)")
		fDays     = flag.Int("days", 0, "only elements edited in the last N days (osm mode)")
		fLimit    = flag.Int("limit", 60, "max results")
		fMinScore = flag.Int("min-score", 0, "minimum score (leads mode)")
		fStatus   = flag.String("status", "", "status filter (leads mode)")
	)
	flag.Parse()

	deps := modkit.Deps{Cfg: root, Log: *l, PG: st.PG, RDS: st.RDS}
	lm := leadsmod.New(deps, leadsmod.Options{})
	module.Register(lm.Name(), lm.Ports())
	ports, ok := module.PortsAs[leadsmod.Ports](lm.Name())
	if !ok {
		l.Panic().Msg("leads ports missing from registry")
	}

	ctx := context.Background()

	switch *fMode {
	case "text":
		if *fQuery == "" {
			l.Fatal().Msg("text mode requires -query")
		}
		runText(ctx, root, ports, *fQuery, *fLat, *fLng, *fRadius, *fType, *fLimit, l)

	case "nearby":
		if *fLat == 0 && *fLng == 0 {
			l.Fatal().Msg("nearby mode requires -lat and -lng")
		}
		runNearby(ctx, root, ports, *fLat, *fLng, *fRadius, *fType, *fLimit, l)

	case "osm":
		if *fArea == "" {
			l.Fatal().Msg("osm mode requires -area")
		}
		runOSM(ctx, root, st, ports, *fArea, *fDays, l)

	case "leads":
		f := ldomain.Filters{Limit: *fLimit}
		if *fMinScore > 0 {
			f.MinScore = fMinScore
		}
		if *fStatus != "" {
			f.Status = ldomain.Status(*fStatus)
		}
		recs, err := ports.Reader.List(ctx, f)
		if err != nil {
			l.Fatal().Err(err).Msg("list failed")
		}
		printJSON(recs)

	default:
		l.Fatal().Str("mode", *fMode).Msg("unknown mode")
	}
}

func newPlaces(root config.Conf, l *logger.Logger) *places.Client {
	pl := root.Prefix("PLACES_")
	key := pl.MayString("API_KEY", "")
	if key == "" {
		l.Fatal().Msg("PLACES_API_KEY is required for this mode")
	}
	return places.NewClient(places.Options{
		APIKey:   key,
		Language: pl.MayString("LANGUAGE", "pt"),
	})
}

func runText(
	ctx context.Context,
	root config.Conf,
	ports leadsmod.Ports,
	query string,
	lat, lng, radius float64,
	typ string,
	limit int,
	l *logger.Logger,
) {
	client := newPlaces(root, l)
	req := places.TextSearchRequest{Query: query, RadiusM: radius, IncludedType: typ}
	if lat != 0 || lng != 0 {
		req.Lat, req.Lng = &lat, &lng
	}

	var cands []ldomain.Candidate
	for p, err := range client.SearchPages(ctx, req, limit) {
		if err != nil {
			l.Fatal().Err(err).Msg("text search failed")
		}
		cands = append(cands, ingest.FromPlace(p, query))
	}
	ingestAndReport(ctx, ports, "text_search", mustParams(map[string]any{
		"query": query, "radius_m": radius, "type": typ,
	}), cands, l)
}

func runNearby(
	ctx context.Context,
	root config.Conf,
	ports leadsmod.Ports,
	lat, lng, radius float64,
	typ string,
	limit int,
	l *logger.Logger,
) {
	client := newPlaces(root, l)
	req := places.NearbySearchRequest{Lat: lat, Lng: lng, RadiusM: radius, MaxResults: limit}
	if typ != "" {
		req.IncludedTypes = []string{typ}
	}
	resp, err := client.NearbySearch(ctx, req)
	if err != nil {
		l.Fatal().Err(err).Msg("nearby search failed")
	}

	query := fmt.Sprintf("nearby %.5f,%.5f r=%.0fm", lat, lng, radius)
	cands := make([]ldomain.Candidate, 0, len(resp.Places))
	for _, p := range resp.Places {
		cands = append(cands, ingest.FromPlace(p, query))
	}
	ingestAndReport(ctx, ports, "nearby_search", mustParams(map[string]any{
		"lat": lat, "lng": lng, "radius_m": radius, "type": typ,
	}), cands, l)
}

func runOSM(
	ctx context.Context,
	root config.Conf,
	st *store.Store,
	ports leadsmod.Ports,
	area string,
	days int,
	l *logger.Logger,
) {
	op := root.Prefix("OVERPASS_")
	client := overpass.NewClient(overpass.Options{
		QueryTimeout: time.Duration(op.MayInt("QUERY_TIMEOUT_S", 180)) * time.Second,
		GeocodeCache: st.RDS,
		CountryCodes: op.MayString("COUNTRY_CODES", "pt"),
	})

	elems, err := client.Discover(ctx, overpass.DiscoverQuery{Area: area, DaysBack: days})
	if err != nil {
		l.Fatal().Err(err).Msg("osm discovery failed")
	}

	cands := make([]ldomain.Candidate, 0, len(elems))
	for _, e := range elems {
		c := ingest.FromElement(e)
		c.SourceQuery = "osm:" + area
		cands = append(cands, c)
	}
	ingestAndReport(ctx, ports, "tag_discovery", mustParams(map[string]any{
		"area": area, "days_back": days,
	}), cands, l)
}

func ingestAndReport(
	ctx context.Context,
	ports leadsmod.Ports,
	queryType string,
	params json.RawMessage,
	cands []ldomain.Candidate,
	l *logger.Logger,
) {
	stats, err := ports.Ingestor.IngestBatch(ctx, ldomain.Batch{
		QueryType:  queryType,
		Params:     params,
		Candidates: cands,
		APICalls:   1,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("ingest failed")
	}
	printJSON(stats)
}

func mustParams(v map[string]any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}
