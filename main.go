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
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finstream/finstream/backend/go-services/handlers"
	"github.com/finstream/finstream/backend/go-services/internal/config"
	"github.com/finstream/finstream/backend/go-services/internal/database"
	"github.com/finstream/finstream/backend/go-services/internal/events"
	"github.com/finstream/finstream/backend/go-services/internal/oidc"
	"github.com/finstream/finstream/backend/go-services/internal/users"
	"github.com/finstream/finstream/backend/go-services/pkg/httperr"
	"github.com/finstream/finstream/backend/go-services/pkg/logger"
	"github.com/finstream/finstream/backend/go-services/pkg/metrics"
	"github.com/finstream/finstream/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// all handler failures are mapped to the error envelope in one place
	r.Use(httperr.Middleware())

	ctx := context.Background()

	// shared runtime vars used by readiness
	var userSvc *users.Service
	var externalVerifier, internalVerifier middleware.Verifier
	var eventsClient *redis.Client

	// Optional Redis connection for the subscription-event stream
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s), subscription events disabled: %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			eventsClient = client
			logger.Infof("connected to Redis for subscription events: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	publisher := events.NewPublisher(eventsClient, "")

	// Keycloak OIDC verifiers, one per audience context
	if cfg.Keycloak.URL != "" && cfg.Keycloak.Realm != "" {
		issuer := strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		if cfg.Keycloak.ExternalClientID != "" {
			if ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ExternalClientID); err != nil {
				logger.Warnf("failed to initialize external OIDC verifier: %v", err)
			} else {
				externalVerifier = ver
			}
		}
		if cfg.Keycloak.InternalClientID != "" {
			if ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.InternalClientID); err != nil {
				logger.Warnf("failed to initialize internal OIDC verifier: %v", err)
			} else {
				internalVerifier = ver
			}
		}
	}

	// Optional insecure verifier for integration tests: parse token claims without signature verification
	if externalVerifier == nil || internalVerifier == nil {
		if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
			logger.Warn("enabling insecure OIDC verifier (integration mode)")
			ins := oidc.NewInsecureVerifier()
			if externalVerifier == nil {
				externalVerifier = ins
			}
			if internalVerifier == nil {
				internalVerifier = ins
			}
		}
	}

	// Connect to MongoDB with retry/backoff to tolerate startup races
	const maxAttempts = 5
	backoff := time.Second
	var client *mongo.Client
	var errConn error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if errConn == nil {
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if errConn != nil {
		logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
	} else {
		defer func() { _ = client.Disconnect(ctx) }()
		usersCol := client.Database(cfg.MongoDB.Database).Collection("users")
		repo := users.NewMongoUserRepository(usersCol)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("failed to ensure user indexes: %v", err)
		}
		userSvc = users.NewService(repo, publisher)
	}

	// Register user handlers when the store and verifiers are available
	if userSvc != nil && externalVerifier != nil && internalVerifier != nil {
		h := handlers.NewUserHandler(userSvc)
		h.Register(r.Group("/"),
			middleware.AuthMiddleware(externalVerifier, middleware.AudienceExternal),
			middleware.AuthMiddleware(internalVerifier, middleware.AudienceInternal),
		)
	} else {
		logger.Warnf("user handlers not registered because store or verifiers are unavailable")
	}

	handlers.RegisterSwagger(r)

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["users"] = userSvc != nil
		if userSvc == nil {
			ready = false
		}

		if cfg.Keycloak.URL != "" {
			deps["oidc"] = externalVerifier != nil && internalVerifier != nil
			if !deps["oidc"] {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		// Redis is optional: report state but never block readiness on it
		deps["redis"] = cfg.Redis.Host == "" || eventsClient != nil

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting user service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
