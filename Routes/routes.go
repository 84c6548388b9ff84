package Routes

import (
	"github.com/ArthurLima05/app.renatalyra/Controllers"
	"github.com/ArthurLima05/app.renatalyra/Middleware"
	"github.com/ArthurLima05/app.renatalyra/SSE"
	"github.com/ArthurLima05/app.renatalyra/Whatsapp"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func ConfigRoutes(router *gin.Engine) {
	// Gzip Compression
	router.Use(gzip.Gzip(gzip.BestSpeed))

	// Public routes
	public := router.Group("/api")
	{
		public.POST("/login", Controllers.Login)
		public.POST("/register", Controllers.Register)

		// Feedback capture surface; no staff login required
		public.GET("/Feedback/:token", Controllers.ResolveFeedbackToken)
		public.POST("/SubmitFeedback", Controllers.SubmitFeedback)

		// WhatsApp gateway webhooks
		public.POST("/ProcessWhatsappResponse", Controllers.ProcessWhatsappResponse)
		public.POST("/RequestReschedule", Controllers.RequestReschedule)
	}

	// Authorized routes
	authorized := router.Group("/api/protected")
	authorized.Use(Middleware.JwtAuthMiddleware())
	{
		// User-related routes
		authorized.GET("/user", Controllers.CurrentUser)
		authorized.POST("/SaveFcmToken", Controllers.SaveFcmToken)

		// Patient-related routes
		authorized.GET("/FetchPatients", Controllers.FetchPatients)
		authorized.POST("/FetchPatient", Controllers.FetchPatient)
		authorized.POST("/CreatePatient", Controllers.CreatePatient)
		authorized.POST("/UpdatePatient", Controllers.UpdatePatient)
		authorized.POST("/DeletePatient", Controllers.DeletePatient)

		// Professional-related routes
		authorized.GET("/FetchProfessionals", Controllers.FetchProfessionals)
		authorized.POST("/CreateProfessional", Controllers.CreateProfessional)

		// Session-related routes
		authorized.POST("/FetchSessionsByPatient", Controllers.FetchSessionsByPatient)
		authorized.POST("/CreateSession", Controllers.CreateSession)
		authorized.POST("/UpdateSession", Controllers.UpdateSession)
		authorized.POST("/DeleteSession", Controllers.DeleteSession)

		// Installment-related routes
		authorized.POST("/FetchSessionInstallments", Controllers.FetchSessionInstallments)
		authorized.POST("/SettleInstallment", Controllers.SettleInstallment)

		// Appointment-related routes
		authorized.GET("/FetchAppointments", Controllers.FetchAppointments)
		authorized.POST("/CreateAppointment", Controllers.CreateAppointment)
		authorized.POST("/UpdateAppointmentStatus", Controllers.UpdateAppointmentStatus)
		authorized.POST("/ConfirmAppointment", Controllers.ConfirmAppointment)
		authorized.GET("/FetchPendingConfirmations", Controllers.FetchPendingConfirmations)

		// Notification-related routes
		authorized.GET("/FetchNotifications", Controllers.FetchNotifications)
		authorized.GET("/UnreadNotificationCount", Controllers.UnreadNotificationCount)
		authorized.POST("/MarkNotificationRead", Controllers.MarkNotificationRead)
		authorized.POST("/MarkAllNotificationsRead", Controllers.MarkAllNotificationsRead)

		// Feedback listing
		authorized.GET("/FetchFeedbacks", Controllers.FetchFeedbacks)

		// WhatsApp-related routes
		authorized.GET("/CheckWhatsAppLogin", Whatsapp.CheckLogin)

		// SSE (Server-Sent Events) route
		authorized.GET("/RequestSSE", SSE.RequestSSE)
	}

	// Finance routes, permission level 2 and up
	finance := router.Group("/api/protected/finance")
	finance.Use(Middleware.JwtAuthMiddleware())
	finance.Use(Middleware.PermissionCheckFinance())
	{
		finance.POST("/FetchTransactions", Controllers.FetchTransactions)
		finance.POST("/CreateTransaction", Controllers.CreateTransaction)
		finance.POST("/DeleteTransaction", Controllers.DeleteTransaction)
		finance.POST("/ExportLedger", Controllers.ExportLedger)
		finance.GET("/DashboardMetrics", Controllers.DashboardMetrics)
	}
}
