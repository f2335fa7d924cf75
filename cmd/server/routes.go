package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/overture-digital/marquee/internal/config"
	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/http/api"
	adminapi "github.com/overture-digital/marquee/internal/http/api/admin/endpoints"
	tvapi "github.com/overture-digital/marquee/internal/http/api/tv/endpoints"
	"github.com/overture-digital/marquee/internal/redis"
	"github.com/overture-digital/marquee/internal/signage/delivery"
	"github.com/overture-digital/marquee/internal/signage/heartbeat"
	"github.com/overture-digital/marquee/internal/signage/pairing"
	"github.com/overture-digital/marquee/internal/storage"
)

// Services bundles the wired core components the route modules depend on.
type Services struct {
	Gate    *delivery.Gate
	Tracker *heartbeat.Tracker
	Machine *pairing.Machine
	Cache   *redis.VersionCache
	Storage storage.Storage
}

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store db.Store, svc Services) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		adminapi.AuthPublicModule(cfg.JWTSecret, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Store:     store,
	},
		adminapi.AuthSessionModule(cfg.JWTSecret, store),
		adminapi.ScreenModule(store, svc.Machine, svc.Tracker),
		adminapi.PlaylistModule(store, svc.Cache),
		adminapi.ScheduleModule(store),
		adminapi.ContentModule(store, svc.Storage),
	)

	// device endpoints authenticate by device key, not JWT
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		tvapi.PairingModule(svc.Machine),
		tvapi.PlayerModule(store, svc.Gate, svc.Tracker),
	)

	if !cfg.UseSpaces {
		r.Static("/uploads", cfg.UploadDir)
	}
}
