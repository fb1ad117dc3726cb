package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/angelodel80/cadmus-api/handlers"
	"github.com/angelodel80/cadmus-api/internal/config"
	"github.com/angelodel80/cadmus-api/internal/database"
	"github.com/angelodel80/cadmus-api/internal/item/handler"
	"github.com/angelodel80/cadmus-api/internal/item/repository"
	"github.com/angelodel80/cadmus-api/internal/item/service"
	"github.com/angelodel80/cadmus-api/internal/oidc"
	"github.com/angelodel80/cadmus-api/internal/part"
	"github.com/angelodel80/cadmus-api/internal/pincache"
	"github.com/angelodel80/cadmus-api/internal/tokens"
	"github.com/angelodel80/cadmus-api/internal/users"
	"github.com/angelodel80/cadmus-api/pkg/logger"
	"github.com/angelodel80/cadmus-api/pkg/metrics"
	"github.com/angelodel80/cadmus-api/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Environment == "production" {
		logger.UseJSON()
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v", cfg.Keycloak.Issuer() != "", cfg.MongoDB.URI != "", cfg.Redis.Addr() != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{}

	r := gin.New()
	r.Use(cors, gin.Logger(), gin.Recovery())

	// Redis backs the pin cache and, when reachable, the rate limiter.
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Infof("connected to Redis: %s", addr)
			defer rdb.Close()
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	// limits run after authentication so they key by user rather than IP
	apiMiddleware := []gin.HandlerFunc{middleware.AuthMiddleware(verifiers(ctx, cfg))}
	if cfg.RateLimit.Enabled {
		if rdb != nil {
			apiMiddleware = append(apiMiddleware, middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window))
		} else {
			apiMiddleware = append(apiMiddleware, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	repos, userRepo, client := storage(ctx, cfg)
	if client != nil {
		defer func() { _ = client.Disconnect(context.Background()) }()
		checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	}

	userSvc := users.NewService(userRepo)
	if err := userSvc.EnsureAdmin(ctx, cfg.Seed.AdminUserName, cfg.Seed.AdminEmail); err != nil {
		logger.Warnf("failed to seed admin user %s: %v", cfg.Seed.AdminUserName, err)
	}

	var cache service.PinCache
	if cfg.PinCache.Enabled && rdb != nil {
		cache = pincache.NewRedisCache(rdb, cfg.PinCache.Prefix, cfg.PinCache.TTL)
		logger.Infof("pin cache enabled (ttl %s)", cfg.PinCache.TTL)
	}
	svc := service.NewService(repos, part.DefaultRegistry(), cache)

	handlers.RegisterHealth(r, startTime, checks)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := r.Group("", apiMiddleware...)
	handlers.RegisterUserInfo(authed.Group("/api"), userSvc)
	handler.RegisterItemRoutes(authed, svc)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting cadmus-api on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// storage connects to MongoDB when configured and falls back to in-memory
// repositories otherwise. The returned client is nil for the fallback.
func storage(ctx context.Context, cfg *config.Config) (repository.Factory, users.UserRepository, *mongo.Client) {
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.Retries)
		if err == nil {
			usersCol := client.Database(cfg.MongoDB.UsersDatabase).Collection("users")
			return repository.NewMongoFactory(client), users.NewMongoUserRepository(usersCol), client
		}
		logger.Warnf("could not connect to MongoDB: %v", err)
	}
	logger.Warnf("using in-memory storage; data is lost on exit")
	return repository.NewMemoryFactory(), users.NewMemoryUserRepository(), nil
}

// verifiers builds the token verifier chain: Keycloak first, then tokens
// signed with JWT_SECRET, then unsigned tokens when explicitly allowed.
func verifiers(ctx context.Context, cfg *config.Config) middleware.Verifier {
	var chain oidc.Chain
	if cfg.Keycloak.Issuer() != "" {
		kv, err := oidc.NewKeycloakVerifier(ctx, cfg.Keycloak)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			chain = append(chain, kv)
		}
	}
	if cfg.JWT.Secret != "" {
		chain = append(chain, tokens.NewHMACVerifier(cfg.JWT.Secret))
	}
	if cfg.JWT.AllowInsecure {
		logger.Warn("enabling insecure token verifier (integration mode)")
		chain = append(chain, oidc.NewInsecureVerifier())
	}
	logger.Debugf("token verifiers: %d", len(chain))
	return chain
}

// cors is a permissive policy for the Cadmus web frontend.
func cors(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
	h.Set("Access-Control-Expose-Headers", "Content-Length, Location")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}
