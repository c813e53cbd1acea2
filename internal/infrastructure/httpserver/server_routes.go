package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	api.Use(s.middleware.RateLimit.Handler())

	api.GET("/canvas/:trackId", s.getCanvas)
	api.GET("/lyrics/:trackId", s.getLyrics)
	api.GET("/player", s.getPlayerState)
	api.GET("/player/track", s.getCurrentTrack)

	if !s.middleware.Admin.Enabled() {
		return
	}
	admin := api.Group("/admin", s.middleware.Admin.RequireAdmin())
	admin.GET("/cache", s.getCacheStats)
	admin.POST("/cache/clear", s.clearCache)
}
