package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"

	"healthroute/internal/aiclassifier"
	aihttp "healthroute/internal/aiclassifier/httpclient"
	"healthroute/internal/classifier"
	"healthroute/internal/config"
	"healthroute/internal/geocode"
	geohttp "healthroute/internal/geocode/httpclient"
	"healthroute/internal/httpapi"
	"healthroute/internal/resolver"
	"healthroute/internal/router"
	"healthroute/internal/store"
	"healthroute/internal/version"
)

func main() {
	cfg := config.Load()

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Warnf("invalid LOG_LEVEL %q, defaulting to info", cfg.LogLevel)
	}

	build := version.Current()
	log.Infof("starting %s %s (%s)", build.Service, build.Release, build.GoVersion)

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := store.Connect(store.PoolConfig{
		DSN:                cfg.DBDSN,
		MaxOpenConns:       cfg.DBMaxOpenConns,
		MaxIdleConns:       cfg.DBMaxIdleConns,
		ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
		PingMaxWaitSec:     cfg.DBPingMaxWaitSec,
	})
	if err != nil {
		log.Fatalf("failed to connect to facility store: %v", err)
	}
	defer db.Close()

	if err := store.InitSchema(db); err != nil {
		log.Fatalf("failed to initialize facility store schema: %v", err)
	}

	st := store.New(db, time.Duration(cfg.PoolAcquireTimeoutMS)*time.Millisecond)

	var aiClient aiclassifier.Client
	if cfg.AIClassifierURL != "" {
		aiClient = aihttp.New(cfg.AIClassifierURL, time.Duration(cfg.AIClassifierTimeoutMS)*time.Millisecond)
		log.Infof("external AI classifier configured at %s", cfg.AIClassifierURL)
	} else {
		log.Info("AI_CLASSIFIER_URL not set, classifier will fall back to rule-based severity mapping")
	}

	cl, err := classifier.New(aiClient, cfg.StageCacheSecret, time.Duration(cfg.StageCacheTTLMin)*time.Minute)
	if err != nil {
		log.Fatalf("failed to build classifier: %v", err)
	}

	var geocodeClient geocode.Client
	if cfg.GeocodeIndexName != "" {
		geocodeClient = geohttp.New(&http.Client{Timeout: time.Duration(cfg.GeocodeTimeoutMS) * time.Millisecond},
			cfg.GeocodeBaseURL, cfg.GeocodeProviderRegion, cfg.GeocodeIndexName, cfg.GeocodeAPIKey)
		log.Infof("external geocoder configured for index %s", cfg.GeocodeIndexName)
	} else {
		log.Info("GEOCODE_INDEX_NAME not set, postal resolution will use local centroid strategies only")
	}

	res := resolver.New(st, geocodeClient, time.Duration(cfg.GeocodeTimeoutMS)*time.Millisecond,
		cfg.CountryBoundingBox, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	rt := router.New(st, cfg.QualityThreshold, cfg.MinResultsBeforeRelax, cfg.MaxRadiusKM)

	server := httpapi.NewServer(cfg, db, st, cl, res, rt)
	engine := server.NewRouter()

	addr := fmt.Sprintf(":%d", cfg.ListenPort)
	log.Infof("routing service listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
