package handler

import (
	"net/http"

	"clapo/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "✨")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}

		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication))
		routesAPIv1.GET("", Hello)

		a := groupAura{cfg.Container}
		l := groupLeaderboard{cfg.Container}

		routesAPIv1Me := routesAPIv1.Group("/aura/me")
		{
			routesAPIv1Me.GET("", a.Me)
			routesAPIv1Me.GET("/daily", a.MyDailyStatus)
			routesAPIv1Me.GET("/transactions", a.MyTransactions)
			routesAPIv1Me.POST("/claim/daily", a.ClaimDailyBonus)
		}

		routesAPIv1.GET("/aura/leaderboard", l.GetLeaderboard)

		routesAPIv1Svc := routesAPIv1.Group("/aura")
		{
			clientAuth, err := do.Invoke[*services.ServiceClientAuth](cfg.Container)
			if err != nil {
				return nil, err
			}

			routesAPIv1Svc.Use(AuthnService(clientAuth))
			routesAPIv1Svc.Use(middlewareThrottleClient(cfg.Container))

			routesAPIv1Svc.GET("/:user", a.Show)
			routesAPIv1Svc.GET("/:user/tier", a.TierState)
			routesAPIv1Svc.POST("/:user/update", a.Update)
			routesAPIv1Svc.GET("/:user/transactions", a.Transactions)
			routesAPIv1Svc.POST("/:user/post-reward", a.RewardPost)
		}
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "clapo aura", nil)
}
