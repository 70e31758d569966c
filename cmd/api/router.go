package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roflexi/internal/config"
	"roflexi/internal/middleware"
	"roflexi/internal/modules/handoff"
	"roflexi/internal/modules/identity"
	"roflexi/internal/modules/provisioning"
	"roflexi/internal/pkg/cache"
	jwtsvc "roflexi/internal/pkg/jwt"
	"roflexi/internal/pkg/metrics"
	"roflexi/internal/repository"
	"roflexi/internal/storage"
)

func newRouter(cfg *config.Config, zlog *zap.Logger, db *gorm.DB, kv cache.Store, images storage.Store) *gin.Engine {
	principalRepo := repository.NewPrincipalRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.BootstrapTokenTTL, cfg.SessionTokenTTL)

	identityService := identity.NewService(principalRepo, j, kv)
	identityHandler := identity.NewHandler(identityService)

	codes := handoff.NewCodes(kv, cfg.ExchangeCodePepper, cfg.ExchangeCodeTTL)
	handoffService := handoff.NewService(codes, identityService, profileRepo, cfg.HandoffRequireCode, zlog)
	handoffHandler := handoff.NewHandler(handoffService, zlog)

	provisioningService := provisioning.NewService(
		identityService,
		profileRepo,
		images,
		handoffService,
		kv,
		provisioning.Options{
			PhoneCountryCode: cfg.PhoneCountryCode,
			IdempotencyTTL:   cfg.IdempotencyTTL,
		},
		zlog,
	)
	provisioningHandler := provisioning.NewHandler(provisioningService, cfg.MaxImageBytes, zlog)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxImageBytes
	r.Use(middleware.RequestLogger(zlog, !cfg.IsProdLike()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the Roflexi Hackathon App!")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if local, ok := images.(*storage.Local); ok {
		r.Static(cfg.UploadsURLPrefix, local.Dir())
	}

	provisioningHandler.RegisterRoutes(r)
	handoffHandler.RegisterRoutes(r)
	identityHandler.RegisterRoutes(r)

	return r
}
