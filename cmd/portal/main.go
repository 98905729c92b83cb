package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/avidev9/school-portal-api/api/swagger"
	"github.com/avidev9/school-portal-api/internal/handler"
	"github.com/avidev9/school-portal-api/internal/middleware"
	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/repository"
	"github.com/avidev9/school-portal-api/internal/service"
	"github.com/avidev9/school-portal-api/pkg/cache"
	"github.com/avidev9/school-portal-api/pkg/config"
	"github.com/avidev9/school-portal-api/pkg/database"
	"github.com/avidev9/school-portal-api/pkg/export"
	"github.com/avidev9/school-portal-api/pkg/formrelay"
	"github.com/avidev9/school-portal-api/pkg/jobs"
	"github.com/avidev9/school-portal-api/pkg/logger"
	corsmiddleware "github.com/avidev9/school-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/avidev9/school-portal-api/pkg/middleware/requestid"
	"github.com/avidev9/school-portal-api/pkg/storage"
)

// @title School Portal API
// @version 1.0.0
// @description Marketing site backend and role-gated portal for students, teachers and admins
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// The portal stays up without Redis; overview reads just skip the cache.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, overview caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	store, err := storage.NewObjectStore(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init object store", "error", err)
	}

	relay := formrelay.NewClient(cfg.Contact.RelayURL, cfg.Contact.AccessKey, cfg.Contact.Timeout)
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	examRepo := repository.NewExamRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	syllabusRepo := repository.NewSyllabusRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	recorder := service.NewActivityRecorder(activityRepo, jobs.QueueConfig{Workers: 2, Logger: logr}, logr)
	recorder.Start(context.Background())
	defer recorder.Stop()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Overview.CacheTTL, logr, cfg.Overview.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, recorder, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		ResetTokenExpiry:   cfg.JWT.ResetExpiration,
		Issuer:             cfg.JWT.Issuer,
		Audience:           cfg.JWT.Audience,
	})
	attendanceSvc := service.NewAttendanceService(attendanceRepo, recorder, export.NewCSVExporter(), validate, logr)
	examSvc := service.NewExamService(examRepo, recorder, export.NewPDFExporter(), validate, logr)
	uploadLimits := service.UploadLimits{
		MaxFileSize:  cfg.Uploads.MaxFileSize,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
	}
	homeworkSvc := service.NewHomeworkService(homeworkRepo, store, recorder, uploadLimits, validate, logr)
	noticeSvc := service.NewNoticeService(noticeRepo, recorder, validate, logr)
	materialSvc := service.NewMaterialService(materialRepo, store, recorder, uploadLimits, validate, logr)
	syllabusSvc := service.NewSyllabusService(syllabusRepo, recorder, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, validate, logr)
	profileSvc := service.NewProfileService(profileRepo, store, recorder, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, recorder, validate, logr)
	userSvc := service.NewUserService(userRepo, recorder, logr)
	activitySvc := service.NewActivityService(activityRepo, logr)
	overviewSvc := service.NewOverviewService(homeworkRepo, examRepo, noticeRepo, activityRepo, timetableRepo, cacheSvc, cfg.Overview.CacheTTL, logr)
	contactSvc := service.NewContactService(relay, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	examHandler := handler.NewExamHandler(examSvc, metricsSvc)
	homeworkHandler := handler.NewHomeworkHandler(homeworkSvc)
	noticeHandler := handler.NewNoticeHandler(noticeSvc)
	materialHandler := handler.NewMaterialHandler(materialSvc, metricsSvc)
	syllabusHandler := handler.NewSyllabusHandler(syllabusSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	overviewHandler := handler.NewOverviewHandler(overviewSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	studentHandler := handler.NewStudentHandler(studentSvc, attendanceSvc, examSvc, homeworkSvc, timetableSvc)
	adminHandler := handler.NewAdminHandler(studentSvc, userSvc)
	contactHandler := handler.NewContactHandler(contactSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/uploads", store.Dir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	public := api.Group("/public")
	{
		public.GET("/notices", noticeHandler.PublicBoard)
		public.POST("/contact", contactHandler.Submit)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		session := auth.Group("", middleware.JWT(authSvc))
		{
			session.POST("/logout", authHandler.Logout)
			session.POST("/change-password", authHandler.ChangePassword)
			session.GET("/me", authHandler.Me)
		}
	}

	teacher := api.Group("/teacher", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher))
	{
		teacher.GET("/overview", overviewHandler.Teacher)
		teacher.GET("/activity", activityHandler.Mine)

		teacher.GET("/attendance", attendanceHandler.Sheet)
		teacher.POST("/attendance", attendanceHandler.Submit)
		teacher.GET("/attendance/export", attendanceHandler.ExportCSV)
		teacher.GET("/students/:id/attendance", attendanceHandler.StudentHistory)

		teacher.POST("/exams", examHandler.Create)
		teacher.GET("/exams", examHandler.List)
		teacher.DELETE("/exams/:id", examHandler.Delete)
		teacher.PUT("/exams/:id/marks", examHandler.SubmitMarks)
		teacher.GET("/exams/:id/results", examHandler.Results)
		teacher.GET("/exams/:id/results/export", examHandler.ExportResultsPDF)

		teacher.POST("/homework", homeworkHandler.Create)
		teacher.GET("/homework", homeworkHandler.List)
		teacher.PATCH("/homework/:id", homeworkHandler.Update)
		teacher.DELETE("/homework/:id", homeworkHandler.Delete)

		teacher.POST("/notices", noticeHandler.Create)
		teacher.GET("/notices", noticeHandler.List)
		teacher.PATCH("/notices/:id", noticeHandler.Update)
		teacher.PUT("/notices/:id/publish", noticeHandler.SetPublished)
		teacher.DELETE("/notices/:id", noticeHandler.Delete)

		teacher.POST("/materials", materialHandler.Upload)
		teacher.GET("/materials", materialHandler.List)
		teacher.DELETE("/materials/:id", materialHandler.Delete)

		teacher.POST("/syllabus", syllabusHandler.CreateChapter)
		teacher.GET("/syllabus", syllabusHandler.ListChapters)
		teacher.PATCH("/syllabus/:id/progress", syllabusHandler.AdjustProgress)
		teacher.DELETE("/syllabus/:id", syllabusHandler.DeleteChapter)

		teacher.GET("/timetable", timetableHandler.Mine)

		teacher.GET("/profile", profileHandler.Get)
		teacher.PATCH("/profile", profileHandler.Update)
		teacher.POST("/profile/avatar", profileHandler.UploadAvatar)
	}

	student := api.Group("/student", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/record", studentHandler.Record)
		student.GET("/attendance", studentHandler.AttendanceHistory)
		student.GET("/attendance/summary", studentHandler.AttendanceSummary)
		student.GET("/marks", studentHandler.Marks)
		student.GET("/homework", studentHandler.Homework)
		student.GET("/timetable", studentHandler.Timetable)
		student.GET("/notices", noticeHandler.StudentBoard)
		student.GET("/materials", materialHandler.StudentList)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/students", adminHandler.ListStudents)
		admin.POST("/students", adminHandler.CreateStudent)
		admin.GET("/students/:id", adminHandler.GetStudent)
		admin.PATCH("/students/:id", adminHandler.UpdateStudent)
		admin.DELETE("/students/:id", adminHandler.DeleteStudent)

		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/active", adminHandler.SetUserActive)

		admin.POST("/timetable", timetableHandler.Create)
		admin.GET("/timetable", timetableHandler.List)
		admin.DELETE("/timetable/:id", timetableHandler.Delete)

		admin.PUT("/teacher-profiles", profileHandler.AdminUpsert)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
