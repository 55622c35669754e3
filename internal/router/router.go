package router

import (
	"time"

	"linkmint/config"
	"linkmint/internal/handler"
	"linkmint/internal/middleware"
	"linkmint/internal/repository"
	"linkmint/internal/service"
	"linkmint/pkg/mailer"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, mail mailer.Mailer) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	viewRepo := repository.NewLinkViewRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Services
	earningsSvc := service.NewEarningsService(db, &cfg.Earnings, linkRepo, viewRepo, referralRepo, userRepo, withdrawalRepo, settingRepo)
	otpSvc := service.NewOTPService(otpRepo, userRepo, mail, cfg.Earnings.OTPTTL)
	withdrawalSvc := service.NewWithdrawalService(db, &cfg.Earnings, userRepo, withdrawalRepo, settingRepo, earningsSvc, otpSvc)

	// Handlers
	viewHandler := handler.NewViewHandler(earningsSvc)
	earningsHandler := handler.NewEarningsHandler(earningsSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc, otpSvc)
	adminWithdrawalHandler := handler.NewAdminWithdrawalHandler(withdrawalSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		// Called by the interstitial sequencer, not by end users.
		api.POST("/views", viewHandler.Record)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/earnings", earningsHandler.GetSummary)
			me.GET("/referrals", earningsHandler.ListReferrals)
			me.GET("/withdrawals", withdrawalHandler.List)
			me.POST("/withdrawals/otp", withdrawalHandler.RequestOTP)
			me.POST("/withdrawals", withdrawalHandler.Create)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/withdrawals", adminWithdrawalHandler.List)
			admin.POST("/withdrawals/:id/approve", adminWithdrawalHandler.Approve)
			admin.POST("/withdrawals/:id/reject", adminWithdrawalHandler.Reject)
			admin.POST("/withdrawals/bulk", adminWithdrawalHandler.Bulk)
			admin.GET("/withdrawals/export", adminWithdrawalHandler.Export)
		}
	}

	return r
}
