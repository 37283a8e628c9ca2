package main

import (
	"portfolio-dashboard/config"
	"portfolio-dashboard/database"
	"portfolio-dashboard/handlers"
	"portfolio-dashboard/identity"
	"portfolio-dashboard/market"
	"portfolio-dashboard/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}

	var registry identity.Registry = identity.NopRegistry{}
	rdb, err := config.InitRedis(cfg)
	if err != nil {
		log.Warnf("Redis unavailable, user registry disabled: %v", err)
	} else if rdb != nil {
		defer rdb.Close()
		registry = identity.NewRedisRegistry(rdb, cfg.TokenTTL)
	}

	charts := market.NewYahooClient(cfg.YahooChartURL, cfg.MarketTimeout)
	h := &handlers.Handler{
		Store:        database.NewStore(db),
		Prices:       market.NewResolver(charts, cfg.HomeCurrency, cfg.FallbackUSDRate, cfg.MarketTimeout),
		Charts:       charts,
		Search:       market.NewSearcher(cfg.YahooSearchURL, cfg.MarketTimeout),
		Watchlist:    handlers.DefaultWatchlist,
		HomeCurrency: cfg.HomeCurrency,
		InitialCash:  cfg.InitialCash,
	}

	router := gin.Default()
	router.GET("/healthz", handlers.Health)

	api := router.Group("/api")
	api.Use(middleware.UserToken(identity.NewIssuer(cfg.TokenSecret, cfg.TokenTTL), registry))
	h.Register(api)

	log.WithField("port", cfg.Port).Info("Starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
