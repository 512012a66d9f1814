package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medverify/verification-services/handlers"
	"github.com/medverify/verification-services/internal/appsession"
	"github.com/medverify/verification-services/internal/config"
	"github.com/medverify/verification-services/internal/database"
	"github.com/medverify/verification-services/internal/oidc"
	"github.com/medverify/verification-services/internal/teletan"
	"github.com/medverify/verification-services/pkg/logger"
	"github.com/medverify/verification-services/pkg/metrics"
	"github.com/medverify/verification-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: iam=%v mongo=%v redis=%v", cfg.IAM.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early: it backs the TeleTAN store and, when configured,
	// the rate limiter.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-operator when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// shared runtime vars used by handlers/readiness
	var verifier middleware.Verifier
	var sessionSvc *appsession.Service
	var teleTanSvc *teletan.Service

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["storage"] = sessionSvc != nil
		if sessionSvc == nil {
			ready = false
		}

		deps["teletan"] = teleTanSvc != nil
		if teleTanSvc == nil {
			ready = false
		}

		// OIDC readiness: if an IAM URL was configured we expect a verifier
		// (or ALLOW_INSECURE_TOKEN)
		if cfg.IAM.URL != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// IAM OIDC verifier for the operator-facing TeleTAN endpoint
	if cfg.IAM.URL != "" && cfg.IAM.ClientID != "" && cfg.IAM.Realm != "" {
		issuer := strings.TrimRight(cfg.IAM.URL, "/") + "/realms/" + cfg.IAM.Realm
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.IAM.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	} else if cfg.IAM.URL != "" && cfg.IAM.ClientID != "" {
		// Fallback: try URL as issuer (older deployments may expose realm path in URL)
		ver, err := oidc.NewVerifier(ctx, cfg.IAM.URL, cfg.IAM.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier (fallback): %v", err)
		} else {
			verifier = ver
		}
	}

	// Optional insecure verifier for integration tests: parse token claims
	// without signature verification
	if verifier == nil {
		if strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN"))) == "true" {
			logger.Warn("enabling insecure OIDC verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		}
	}

	// TeleTAN store lives in Redis; minted codes expire on their own
	if redisClient != nil {
		teleTanSvc = teletan.NewService(teletan.NewRedisStore(redisClient, ""), cfg.TeleTan.TTL)
	} else {
		logger.Warnf("TeleTAN service unavailable: no Redis connection")
	}

	// Connect to MongoDB with retry/backoff to tolerate startup races
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				defer func() { _ = client.Disconnect(ctx) }()
				coll := client.Database(cfg.MongoDB.Database).Collection("app_sessions")
				if err := database.EnsureSessionIndexes(ctx, coll); err != nil {
					logger.Fatalf("failed to ensure session indexes: %v", err)
				}
				var oracle appsession.TeleTanOracle
				if teleTanSvc != nil {
					oracle = teleTanSvc
				}
				sessionSvc = appsession.NewService(appsession.NewMongoRepository(coll), oracle)
				logger.Infof("Connected to MongoDB: database=%s", cfg.MongoDB.Database)
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
	}

	// Register issuance handlers when their dependencies came up
	v1 := r.Group("/version/v1")
	if sessionSvc != nil {
		handlers.NewRegistrationHandler(sessionSvc).Register(v1)
	} else {
		logger.Warnf("registration handler not registered: session storage unavailable")
	}
	if teleTanSvc != nil && verifier != nil {
		handlers.NewTeleTanHandler(teleTanSvc, verifier, cfg.IAM.TeleTanRole).Register(v1)
	} else {
		logger.Warnf("teletan handler not registered: teletan=%v verifier=%v", teleTanSvc != nil, verifier != nil)
	}

	// Minimal Swagger UI + JSON for API documentation
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting verification service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
