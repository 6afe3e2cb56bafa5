package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/editor"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/metrics"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// Services are the handlers' dependencies.
type Services struct {
	Auth      service.AuthService
	Programs  service.ProgramService
	Weeks     service.WeekService
	Workouts  service.WorkoutService
	Exercises service.ExerciseService
	Sets      service.SetService
	Circuits  service.CircuitService
	Library   service.LibraryService
	Clubs     service.ClubService
	Media     service.MediaService
	Analytics service.AnalyticsService
	Editor    *editor.Manager
}

// RouterOptions configure the cross-cutting middleware.
type RouterOptions struct {
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer
	// Limiter is nil when rate limiting is disabled.
	Limiter            RequestRateLimiter
	RateLimitPerMinute int
}

func SetupRoutes(router *gin.Engine, svc Services, opts RouterOptions) {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewTestManager()
	}
	// metrics wrap recovery so recovered panics are counted as 500s
	router.Use(RequestMetrics(opts.Metrics), PanicRecovery(opts.Metrics), LogRequest())

	authHandler := NewAuthHandler(svc.Auth)
	programHandler := NewProgramHandler(svc.Programs, svc.Weeks, svc.Editor)
	workoutHandler := NewWorkoutHandler(svc.Workouts, svc.Exercises, svc.Sets, svc.Circuits)
	editorHandler := NewEditorHandler(svc.Editor)
	libraryHandler := NewLibraryHandler(svc.Library)
	clubHandler := NewClubHandler(svc.Clubs)
	mediaHandler := NewMediaHandler(svc.Media)
	syncHandler := NewSyncHandler(svc.Analytics)

	authMiddleware := AuthMiddleware(svc.Auth)
	rateLimit := RateLimit(opts.Limiter, opts.Metrics, opts.RateLimitPerMinute)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")

	// anonymous requests are limited per client IP, authenticated ones per user
	public := apiV1.Group("")
	public.Use(rateLimit)
	{
		authGroup := public.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
		public.GET("/programs/public", programHandler.ListPublicPrograms)
		public.GET("/published/workouts/:slug", workoutHandler.GetPublished)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware, rateLimit)
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
		protected.PATCH("/me", authHandler.UpdateMe)

		// --- Programs and weeks ---
		protected.POST("/programs", programHandler.CreateProgram)
		protected.GET("/programs", programHandler.ListPrograms)
		programGroup := protected.Group("/programs/:programId")
		{
			programGroup.GET("", programHandler.GetProgram)
			programGroup.PATCH("", programHandler.UpdateProgram)
			programGroup.DELETE("", programHandler.DeleteProgram)
			programGroup.PUT("/settings", programHandler.UpdateSettings)
			programGroup.PUT("/price", programHandler.UpdatePrice)
			programGroup.PUT("/visibility", programHandler.SetVisibility)
			programGroup.POST("/purchase", programHandler.PurchaseProgram)
			programGroup.GET("/purchase", programHandler.HasPurchased)
			programGroup.POST("/weeks", programHandler.AddWeek)
			programGroup.PUT("/weeks/order", programHandler.ReorderWeeks)
			programGroup.POST("/workouts", workoutHandler.AddWorkoutToProgram)
		}
		protected.PATCH("/weeks/:weekId", programHandler.UpdateWeek)
		protected.DELETE("/weeks/:weekId", programHandler.DeleteWeek)
		protected.POST("/weeks/:weekId/workouts", workoutHandler.AddWorkout)

		// --- Workouts, exercises, sets, circuits ---
		workoutGroup := protected.Group("/workouts/:workoutId")
		{
			workoutGroup.GET("", workoutHandler.GetWorkout)
			workoutGroup.PATCH("", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("", workoutHandler.DeleteWorkout)
			workoutGroup.PUT("/price", workoutHandler.UpdatePrice)
			workoutGroup.POST("/purchase", workoutHandler.PurchaseWorkout)
			workoutGroup.GET("/purchase", workoutHandler.HasPurchased)
			workoutGroup.POST("/exercises", workoutHandler.AddExercise)
			workoutGroup.PUT("/exercises/order", workoutHandler.ReorderExercises)
			workoutGroup.POST("/circuits", workoutHandler.CreateCircuit)
		}
		exerciseGroup := protected.Group("/exercises/:exerciseId")
		{
			exerciseGroup.PATCH("", workoutHandler.UpdateExercise)
			exerciseGroup.DELETE("", workoutHandler.DeleteExercise)
			exerciseGroup.POST("/sets", workoutHandler.AddSet)
			exerciseGroup.POST("/media/upload-url", mediaHandler.RequestUpload)
			exerciseGroup.PUT("/media", mediaHandler.ConfirmUpload)
			exerciseGroup.GET("/media", mediaHandler.DownloadURL)
		}
		protected.PATCH("/sets/:setId", workoutHandler.UpdateSet)
		protected.DELETE("/sets/:setId", workoutHandler.DeleteSet)
		circuitGroup := protected.Group("/circuits/:circuitId")
		{
			circuitGroup.PATCH("", workoutHandler.UpdateCircuit)
			circuitGroup.DELETE("", workoutHandler.DeleteCircuit)
			circuitGroup.POST("/exercises", workoutHandler.AddCircuitMember)
			circuitGroup.DELETE("/exercises/:exerciseId", workoutHandler.RemoveCircuitMember)
		}

		// --- Editor sessions ---
		editorGroup := protected.Group("/editor/:programId")
		{
			editorGroup.GET("", editorHandler.Open)
			editorGroup.DELETE("", editorHandler.Close)
			editorGroup.POST("/actions", editorHandler.Dispatch)
		}

		// --- Library ---
		libraryGroup := protected.Group("/library")
		{
			libraryGroup.POST("/workouts", libraryHandler.SaveWorkout)
			libraryGroup.GET("/workouts", libraryHandler.ListWorkouts)
			libraryGroup.PATCH("/workouts/:workoutId", libraryHandler.UpdateWorkout)
			libraryGroup.DELETE("/workouts/:workoutId", libraryHandler.RemoveWorkout)
			libraryGroup.POST("/workouts/:workoutId/load", libraryHandler.LoadWorkout)
			libraryGroup.POST("/weeks", libraryHandler.SaveWeek)
			libraryGroup.GET("/weeks", libraryHandler.ListWeeks)
			libraryGroup.DELETE("/weeks/:weekId", libraryHandler.RemoveWeek)
			libraryGroup.POST("/weeks/:weekId/load", libraryHandler.LoadWeek)
			libraryGroup.POST("/programs", libraryHandler.SaveProgram)
			libraryGroup.GET("/programs", libraryHandler.ListPrograms)
			libraryGroup.DELETE("/programs/:programId", libraryHandler.RemoveProgram)
			libraryGroup.POST("/programs/:programId/copy", libraryHandler.CopyProgram)
			libraryGroup.POST("/import", libraryHandler.ImportProgram)
		}

		// --- Clubs ---
		protected.POST("/clubs", clubHandler.CreateClub)
		protected.GET("/clubs", clubHandler.ListClubs)
		protected.GET("/clubs/mine", clubHandler.ListMyClubs)
		clubGroup := protected.Group("/clubs/:clubId")
		{
			clubGroup.GET("", clubHandler.GetClub)
			clubGroup.PATCH("", clubHandler.UpdateClub)
			clubGroup.DELETE("", clubHandler.DeleteClub)

			clubGroup.POST("/members", clubHandler.JoinClub)
			clubGroup.GET("/members", clubHandler.ListMembers)
			clubGroup.DELETE("/members/me", clubHandler.LeaveClub)
			clubGroup.PUT("/members/:userId/role", clubHandler.UpdateMemberRole)
			clubGroup.POST("/members/:userId/approve", clubHandler.ApproveMember)

			clubGroup.POST("/events", clubHandler.CreateEvent)
			clubGroup.GET("/events", clubHandler.ListEvents)
			clubGroup.POST("/posts", clubHandler.CreatePost)
			clubGroup.GET("/posts", clubHandler.ListPosts)
			clubGroup.POST("/messages", clubHandler.SendMessage)
			clubGroup.GET("/messages", clubHandler.ListMessages)
			clubGroup.POST("/products", clubHandler.CreateProduct)
			clubGroup.GET("/products", clubHandler.ListProducts)

			clubGroup.POST("/subscription", clubHandler.Subscribe)
			clubGroup.DELETE("/subscription", clubHandler.CancelSubscription)

			clubGroup.POST("/shared/:contentType", clubHandler.Share)
			clubGroup.GET("/shared/:contentType", clubHandler.ListShared)
			clubGroup.DELETE("/shared/:contentType/:contentId", clubHandler.Unshare)
		}
		protected.DELETE("/events/:eventId", clubHandler.DeleteEvent)
		protected.PUT("/events/:eventId/rsvp", clubHandler.RSVP)
		protected.GET("/events/:eventId/participants", clubHandler.ListParticipants)
		protected.DELETE("/posts/:postId", clubHandler.DeletePost)
		protected.DELETE("/messages/:messageId", clubHandler.DeleteMessage)
		protected.PUT("/messages/:messageId/pin", clubHandler.PinMessage)
		protected.POST("/products/:productId/purchase", clubHandler.PurchaseProduct)
		protected.GET("/products/:productId/purchase", clubHandler.HasPurchasedProduct)
	}

	apiV2 := router.Group("/api/v2")
	syncGroup := apiV2.Group("/sync")
	syncGroup.Use(authMiddleware, rateLimit)
	{
		syncGroup.POST("/logs", syncHandler.LogWorkout)
		syncGroup.GET("/logs", syncHandler.ListLogs)
		syncGroup.GET("/analytics", syncHandler.Summary)
	}
}
