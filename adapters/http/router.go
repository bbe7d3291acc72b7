package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type Handlers struct {
	Auth        *AuthHandler
	Talent      *TalentHandler
	Feed        *FeedHandler
	Opportunity *OpportunityHandler
	Employer    *EmployerHandler
	Booking     *BookingHandler
}

func NewRouter(h Handlers, jwtSvc *auth.JWTService, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), ErrorMiddleware(log), LocaleMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		authGroup := api.Group("/auth")
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/signup/talent", h.Auth.SignupTalent)
		authGroup.POST("/signup/employer", h.Auth.SignupEmployer)

		api.GET("/opportunities/rss", h.Opportunity.RSS)
		api.GET("/opportunities/:id", h.Opportunity.GetPublic)

		talentGroup := api.Group("/talent")
		talentGroup.Use(AuthMiddleware(jwtSvc, log), RequireRole(auth.RoleTalent))
		{
			talentGroup.GET("/profile", h.Talent.GetProfile)
			talentGroup.PUT("/profile", h.Talent.UpdateProfile)
			talentGroup.PUT("/resume", h.Talent.ReplaceResume)

			talentGroup.GET("/feed", h.Feed.GetFeed)
			talentGroup.POST("/feed/next", h.Feed.Next)
			talentGroup.POST("/feed/scroll", h.Feed.Scroll)
			talentGroup.POST("/feed/refresh", h.Feed.Refresh)

			talentGroup.GET("/saved", h.Talent.ListSaved)
			talentGroup.POST("/saved/:opportunityID", h.Talent.ToggleSaved)
			talentGroup.DELETE("/saved/:opportunityID", h.Talent.ToggleSaved)

			talentGroup.GET("/applications", h.Talent.ListApplications)
			talentGroup.POST("/applications/:opportunityID", h.Talent.Apply)

			talentGroup.GET("/invitations", h.Talent.ListInvitations)
			talentGroup.POST("/invitations/:id/respond", h.Talent.RespondInvitation)

			bookings := talentGroup.Group("/bookings")
			{
				bookings.POST("", h.Booking.Start)
				bookings.GET("", h.Booking.List)
				bookings.GET("/:id", h.Booking.Get)
				bookings.POST("/:id/schedule", h.Booking.Schedule)
				bookings.POST("/:id/pay", h.Booking.Pay)
				bookings.POST("/:id/confirm", h.Booking.Confirm)
				bookings.POST("/:id/cancel", h.Booking.Cancel)
			}
		}

		employerGroup := api.Group("/employer")
		employerGroup.Use(AuthMiddleware(jwtSvc, log), RequireRole(auth.RoleEmployer))
		{
			employerGroup.GET("/profile", h.Employer.GetProfile)
			employerGroup.PUT("/profile", h.Employer.UpdateProfile)
			employerGroup.PUT("/logo", h.Employer.UploadLogo)

			opps := employerGroup.Group("/opportunities")
			{
				opps.POST("", h.Opportunity.Create)
				opps.GET("", h.Opportunity.ListOwn)
				opps.DELETE("/:id", h.Opportunity.Delete)
				opps.GET("/:id/applicants", h.Opportunity.ListApplicants)
			}

			employerGroup.GET("/candidates", h.Employer.SearchCandidates)

			employerGroup.GET("/saved", h.Employer.ListSaved)
			employerGroup.GET("/saved/export.csv", h.Employer.ExportSaved)
			employerGroup.POST("/saved/:talentID", h.Employer.ToggleSaved)
			employerGroup.DELETE("/saved/:talentID", h.Employer.ToggleSaved)

			employerGroup.POST("/invitations", h.Employer.Invite)
			employerGroup.GET("/invitations", h.Employer.ListInvitations)
		}
	}

	return router
}
