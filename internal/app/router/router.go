package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	reghandler "registration_backend/internal/feature/registration/transport/handler"
	"registration_backend/internal/platform/http/handler"
	"registration_backend/internal/platform/http/middleware"
	"registration_backend/internal/platform/metrics"
)

// Options はルーター生成に必要なハンドラーとミドルウェアです。
// Metrics と Gatherer が nil の場合は /metrics を公開しません。
type Options struct {
	Health       *handler.HealthHandler
	Registration *reghandler.RegistrationHandler
	RequireUser  gin.HandlerFunc
	RequireBasic gin.HandlerFunc
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", opts.Health.Liveness)
	r.HEAD("/healthz", opts.Health.Liveness)
	if opts.Gatherer != nil {
		r.GET("/metrics", metrics.Handler(opts.Gatherer))
	}

	v1 := r.Group("/v1")
	v1.GET("/healthcheck", opts.Health.Healthcheck)
	// 新規ユーザー登録
	v1.POST("/register", opts.Registration.Register)

	// 認証必須のルート
	// Basic 認証または Bearer トークンが必要
	auth := v1.Group("/register")
	auth.Use(opts.RequireUser)
	{
		auth.POST("/activate", opts.Registration.Activate)
		auth.POST("/resend-code", opts.Registration.ResendCode)
		auth.GET("/me", opts.Registration.Me)
	}
	// アクセストークンの発行はパスワード認証のみ
	v1.POST("/register/token", opts.RequireBasic, opts.Registration.Token)

	return r
}
