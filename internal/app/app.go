package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ethicscore/internal/cache"
	"ethicscore/internal/config"
	"ethicscore/internal/repository"
	"ethicscore/internal/scoring"
	"ethicscore/internal/service"
)

// App holds the connected stores and the services built on them
type App struct {
	Mongo *mongo.Client
	Redis *redis.Client

	CatalogRepo       repository.CatalogRepo
	ResponseRepo      repository.ResponseRepo
	ScoreRepo         repository.ScoreRepo
	ProjectScoreRepo  repository.ProjectScoreRepo
	CatalogCache      *cache.CatalogCache
	ProjectScoreCache cache.ProjectScoreCache
	HotspotIndex      cache.HotspotIndex

	Canonicalizer   *scoring.Canonicalizer
	AuthService     *service.AuthService
	ScoreService    *service.ScoreService
	ResponseService *service.ResponseService
}

// New connects to MongoDB and Redis and wires every service
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	aliases, err := config.LoadAliases(cfg.PrincipleAliasesFile)
	if err != nil {
		return nil, err
	}
	canon, err := scoring.NewCanonicalizer(aliases)
	if err != nil {
		return nil, fmt.Errorf("principle aliases: %w", err)
	}
	if len(aliases) > 0 {
		logger.Info("Loaded principle aliases", "count", len(aliases), "file", cfg.PrincipleAliasesFile)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	logger.Info("Connected to MongoDB", "database", cfg.MongoDB)

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping Redis: %w", err)
	}
	logger.Info("Connected to Redis", "addr", cfg.RedisAddr())

	db := mongoClient.Database(cfg.MongoDB)
	a := &App{
		Mongo:             mongoClient,
		Redis:             rdb,
		CatalogRepo:       repository.NewCatalogRepo(db),
		ResponseRepo:      repository.NewResponseRepo(db),
		ScoreRepo:         repository.NewScoreRepo(db),
		ProjectScoreRepo:  repository.NewProjectScoreRepo(db),
		ProjectScoreCache: cache.NewProjectScoreCache(rdb, cfg.ProjectCacheTTL),
		HotspotIndex:      cache.NewHotspotIndex(rdb),
		Canonicalizer:     canon,
	}
	a.CatalogCache = cache.NewCatalogCache(a.CatalogRepo, cfg.CatalogCacheSize, cfg.CatalogCacheTTL)

	a.AuthService = service.NewAuthService(cfg.OperatorUsername, cfg.OperatorPassword, cfg.JWTSecret)
	a.ScoreService = service.NewScoreService(
		scoring.NewEngine(canon),
		a.CatalogCache,
		a.ResponseRepo,
		a.ScoreRepo,
		a.ProjectScoreRepo,
		a.ProjectScoreCache,
		a.HotspotIndex,
		cfg.HotspotThreshold,
		logger,
	)
	a.ResponseService = service.NewResponseService(a.ResponseRepo, a.CatalogCache, a.ScoreService, logger)
	return a, nil
}

// Close releases the store connections
func (a *App) Close(ctx context.Context) {
	a.Redis.Close()
	a.Mongo.Disconnect(ctx)
}
