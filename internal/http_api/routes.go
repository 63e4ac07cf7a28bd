package http_api

import "github.com/sadaqapass/sadaqa/internal/models"

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/health", s.health)

	api := s.router.Group(s.config.APIPrefix)
	authed := s.authMiddleware()
	admin := s.adminMiddleware()

	api.POST("/auth/token", s.issueToken)

	funds := api.Group("/funds")
	funds.GET("", s.listFunds)
	funds.GET("/:id", s.getFund)
	funds.POST("", authed, admin, s.createFund)

	campaigns := api.Group("/campaigns")
	campaigns.GET("", s.listCampaigns)
	campaigns.GET("/:id", s.getCampaign)
	campaigns.GET("/:id/donations", s.listCampaignDonations)
	campaigns.GET("/:id/report", s.campaignReport)
	campaigns.POST("", authed, s.createCampaign)
	campaigns.POST("/:id/donate", authed, s.donateToCampaign)
	campaigns.PATCH("/:id/status", authed, s.setCampaignStatus)

	donations := api.Group("/donations", authed)
	donations.POST("/init", s.initDonation)
	donations.GET("/:id", s.getDonation)

	webhooks := api.Group("/payments/webhook")
	webhooks.POST("/yookassa", s.webhook(models.ProviderYooKassa))
	webhooks.POST("/cloudpayments", s.webhook(models.ProviderCloudPayments))

	subscriptions := api.Group("/subscriptions", authed)
	subscriptions.POST("/init", s.initSubscription)
	subscriptions.GET("", s.listSubscriptions)
	subscriptions.POST("/:id/cancel", s.cancelSubscription)
	subscriptions.POST("/:id/pause", s.pauseSubscription)
	subscriptions.POST("/:id/resume", s.resumeSubscription)

	zakat := api.Group("/zakat", authed)
	zakat.POST("/calc", s.calculateZakat)
	zakat.POST("/pay", s.payZakat)
	zakat.GET("/history", s.zakatHistory)

	me := api.Group("/me", authed)
	me.GET("/history", s.myHistory)
	me.GET("/stats", s.myStats)

	statistics := api.Group("/statistics", authed)
	statistics.GET("", s.statistics(models.StatisticsOverview))
	statistics.GET("/donations", s.statistics(models.StatisticsDonations))
	statistics.GET("/campaigns", s.statistics(models.StatisticsCampaigns))
	statistics.GET("/users", s.statistics(models.StatisticsUsers))

	partners := api.Group("/partners")
	partners.POST("/applications", s.submitPartnerApplication)
	partners.GET("/funds", s.listPartnerFunds)
	partners.GET("/applications", authed, admin, s.listPartnerApplications)
	partners.GET("/applications/:id", authed, admin, s.getPartnerApplication)
	partners.PATCH("/applications/:id/status", authed, admin, s.reviewPartnerApplication)

	moderation := api.Group("/admin", authed, admin)
	moderation.GET("/campaigns/pending", s.pendingCampaigns)
	moderation.POST("/campaigns/:id/approve", s.approveCampaign)
	moderation.POST("/campaigns/:id/reject", s.rejectCampaign)
	moderation.POST("/campaigns/check-expired", s.checkExpired)
}
