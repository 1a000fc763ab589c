package di

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"match-occupancy/analysis"
	"match-occupancy/api"
	occupancyapi "match-occupancy/api/occupancy"
	"match-occupancy/config"
	"match-occupancy/dao/redis"
	"match-occupancy/db"
	"match-occupancy/metrics"
	"match-occupancy/server"
	"match-occupancy/server/handlers"
	services "match-occupancy/service"
	"match-occupancy/util/log"
)

// Container holds all application dependencies.
type Container struct {
	Config                    config.Config
	RedisClient               db.RedisClient
	RedisOccupancyDao         *redis.RedisOccupancyDAO
	OccupancyAPI              occupancyapi.OccupancyAPI
	AnalysisService           *services.AnalysisService
	OccupancyRefresherService *services.OccupancyRefresherService
	MatchHandler              *handlers.MatchHandler
	OccupancyHandler          *handlers.OccupancyHandler
	MuxRouter                 *mux.Router
	Router                    *server.Router
	MatchOccupancyHttpServer  *server.MatchOccupancyHttpServer
}

// NewContainer initializes and wires up all dependencies.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	log.Infof("initializing container - env: %s", cfg.Env)
	metrics.Init()

	redisInternalClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	redisClient, err := db.NewGoRedisClient(ctx, redisInternalClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	redisOccupancyDao := redis.NewRedisOccupancyDAO(redisClient)

	// upstream occupancy api, mocked from the bundled fixture outside prod
	var occupancyApiClient occupancyapi.OccupancyAPI
	if cfg.Env != "prod" {
		occupancyApiClient = occupancyapi.NewOccupancyApiClientMock(config.GetResourcePath(config.OCCUPANCY_RECORDS_RESOURCE))
		log.Info("Using mock occupancy api")
	} else {
		log.Info("Using prod occupancy api")
		occupancyApiClient = occupancyapi.NewOccupancyApiClient(api.NewHTTPClient(cfg.Upstream.BaseURL), cfg.Upstream.APIKey)
	}

	anchor, err := cfg.RefresherAnchor()
	if err != nil {
		return nil, err
	}
	if !anchor.IsZero() {
		log.Infof("Refresher window anchored at %s", anchor.Format("2006-01-02"))
	}

	analysisService := services.NewAnalysisService(redisOccupancyDao, analysis.BaselineGroups(cfg.Baselines), cfg.Flags)
	refresherService := services.NewOccupancyRefresherService(
		analysisService, occupancyApiClient, cfg.Upstream.LookbackDays, anchor, cfg.Fixtures)

	matchHandler := handlers.NewMatchHandler(analysisService)
	occupancyHandler := handlers.NewOccupancyHandler(analysisService)

	muxRouter := mux.NewRouter()
	router := server.NewRouter(matchHandler, occupancyHandler, muxRouter, config.GetResourcePath(config.FLAGS_RESOURCE_DIR))
	httpServer := server.NewMatchOccupancyHttpServer(router, muxRouter, cfg.Server.ListenAddress,
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)

	return &Container{
		Config:                    cfg,
		RedisClient:               redisClient,
		RedisOccupancyDao:         redisOccupancyDao,
		OccupancyAPI:              occupancyApiClient,
		AnalysisService:           analysisService,
		OccupancyRefresherService: refresherService,
		MatchHandler:              matchHandler,
		OccupancyHandler:          occupancyHandler,
		MuxRouter:                 muxRouter,
		Router:                    router,
		MatchOccupancyHttpServer:  httpServer,
	}, nil
}
