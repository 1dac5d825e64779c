package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aurasys/reflex-engine/internal/httpapi"
	"github.com/aurasys/reflex-engine/internal/layout"
	"github.com/aurasys/reflex-engine/internal/reflex"
	"github.com/aurasys/reflex-engine/internal/store"
	"github.com/aurasys/reflex-engine/internal/tags"
)

// #region main
func main() {
	dbPath := envOr("REFLEX_DB", "reflex_engine.db")
	listenAddr := envOr("REFLEX_ADDR", ":8080")
	tagsPath := os.Getenv("REFLEX_TAGS")
	layoutPath := os.Getenv("REFLEX_LAYOUT")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	catalog := tags.DefaultCatalog()
	if tagsPath != "" {
		catalog, err = tags.LoadCatalog(tagsPath)
		if err != nil {
			logger.Fatal("load tag catalog", zap.String("path", tagsPath), zap.Error(err))
		}
	}

	shape := layout.DefaultLayout()
	if layoutPath != "" {
		shape, err = layout.LoadLayout(layoutPath)
		if err != nil {
			logger.Fatal("load layout", zap.String("path", layoutPath), zap.Error(err))
		}
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Fatal("open store", zap.String("path", dbPath), zap.Error(err))
	}

	engine, err := reflex.NewEngine(reflex.Config{
		Catalog: catalog,
		Layout:  shape,
		Store:   st,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("build engine", zap.Error(err))
	}
	defer engine.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	httpapi.RegisterRoutes(router, httpapi.NewHandlers(engine, logger))

	logger.Info("reflex engine listening",
		zap.String("addr", listenAddr),
		zap.String("db", dbPath))
	if err := router.Run(listenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
