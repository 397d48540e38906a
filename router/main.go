package router

import (
	"log"
	"os"
	"time"

	"github.com/gapindang/rapor-api/database"
	"github.com/gapindang/rapor-api/handlers"
	admin_handlers "github.com/gapindang/rapor-api/handlers/admin"
	assignment_handlers "github.com/gapindang/rapor-api/handlers/assignment"
	auth_handlers "github.com/gapindang/rapor-api/handlers/auth"
	class_handlers "github.com/gapindang/rapor-api/handlers/class"
	grade_handlers "github.com/gapindang/rapor-api/handlers/grade"
	personality_handlers "github.com/gapindang/rapor-api/handlers/personality"
	report_handlers "github.com/gapindang/rapor-api/handlers/report"
	schoolyear_handlers "github.com/gapindang/rapor-api/handlers/schoolyear"
	subject_handlers "github.com/gapindang/rapor-api/handlers/subject"
	"github.com/gapindang/rapor-api/model"
	"github.com/gapindang/rapor-api/services"
	"github.com/gapindang/rapor-api/services/storage"
	"github.com/gapindang/rapor-api/utils"
	"github.com/gapindang/rapor-api/utils/auth"
	"github.com/gapindang/rapor-api/utils/cache"
	"github.com/gapindang/rapor-api/utils/middleware"
	"github.com/gapindang/rapor-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "rapor-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs login brute-force protection; the API still works
	// without it
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	validator := validation.NewValidator()

	// Services
	schoolYearService := services.NewSchoolYearService(db)
	gradeService := services.NewGradeService(db)
	reportService := services.NewReportService(db, schoolYearService)
	personalityService := services.NewPersonalityService(db)

	// Archive storage is optional; export endpoints stay available
	// without it
	var spacesClient *storage.SpacesClient
	spacesConfig := storage.SpacesConfig{
		AccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SecretKey: os.Getenv("SPACES_SECRET_KEY"),
		Bucket:    os.Getenv("SPACES_BUCKET"),
		Region:    os.Getenv("SPACES_REGION"),
		Endpoint:  os.Getenv("SPACES_ENDPOINT"),
	}
	if spacesConfig.Configured() {
		spacesClient, err = storage.NewSpacesClient(spacesConfig)
		if err != nil {
			log.Printf("Warning: Failed to init Spaces client: %v. Report archival will be disabled.", err)
		}
	}

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	schoolYearHandler := schoolyear_handlers.NewSchoolYearHandler(db, schoolYearService, validator)
	classHandler := class_handlers.NewClassHandler(db, validator)
	subjectHandler := subject_handlers.NewSubjectHandler(db, validator)
	assignmentHandler := assignment_handlers.NewAssignmentHandler(db, validator)
	gradeHandler := grade_handlers.NewGradeHandler(db, gradeService, schoolYearService, validator)
	personalityHandler := personality_handlers.NewPersonalityHandler(personalityService, validator)
	reportHandler := report_handlers.NewReportHandler(db, reportService, schoolYearService, validator)
	exportHandler := report_handlers.NewExportHandler(reportService, spacesClient)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	requireAdmin := authMiddleware.RequireRole(model.RoleAdmin)
	requireTeacher := authMiddleware.RequireRole(model.RoleAdmin, model.RoleTeacher)
	requireStudent := authMiddleware.RequireRole(model.RoleStudent)

	// Auth routes
	authGroup := api.Group("/auth")
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)

	// Admin user management
	adminUsers := api.Group("/admin/users", authMiddleware.Required(), requireAdmin)
	adminUsers.Post("/", func(c *fiber.Ctx) error { return admin_handlers.CreateUser(c, store, validator) })
	adminUsers.Get("/", utils.MakeHTTPHandleFunc(admin_handlers.ListUsers, store))
	adminUsers.Get("/:id", utils.MakeHTTPHandleFunc(admin_handlers.GetUser, store))
	adminUsers.Put("/:id", utils.MakeHTTPHandleFunc(admin_handlers.UpdateUser, store))
	adminUsers.Post("/:id/reset-password", func(c *fiber.Ctx) error { return admin_handlers.ResetUserPassword(c, store, validator) })
	adminUsers.Delete("/:id", utils.MakeHTTPHandleFunc(admin_handlers.DeleteUser, store))

	// School years (admin writes, authenticated reads)
	schoolYears := api.Group("/school-years", authMiddleware.Required())
	schoolYears.Get("/", schoolYearHandler.List)
	schoolYears.Get("/active", schoolYearHandler.GetActive)
	schoolYears.Post("/", requireAdmin, schoolYearHandler.Create)
	schoolYears.Post("/:id/activate", requireAdmin, schoolYearHandler.Activate)

	// Classes
	classes := api.Group("/classes", authMiddleware.Required())
	classes.Get("/", classHandler.List)
	classes.Get("/:id", classHandler.Get)
	classes.Post("/", requireAdmin, classHandler.Create)
	classes.Put("/:id", requireAdmin, classHandler.Update)
	classes.Delete("/:id", requireAdmin, classHandler.Delete)
	classes.Put("/:id/homeroom", requireAdmin, classHandler.AssignHomeroom)
	classes.Post("/:id/members", requireAdmin, classHandler.AddMember)
	classes.Delete("/:id/members/:studentID", requireAdmin, classHandler.RemoveMember)
	classes.Get("/:id/grades", requireTeacher, gradeHandler.ListClassGrades)

	// Subjects
	subjects := api.Group("/subjects", authMiddleware.Required())
	subjects.Get("/", subjectHandler.List)
	subjects.Post("/", requireAdmin, subjectHandler.Create)
	subjects.Put("/:id", requireAdmin, subjectHandler.Update)
	subjects.Delete("/:id", requireAdmin, subjectHandler.Delete)

	// Teaching assignments
	assignments := api.Group("/assignments", authMiddleware.Required())
	assignments.Get("/", requireTeacher, assignmentHandler.List)
	assignments.Post("/", requireAdmin, assignmentHandler.Create)
	assignments.Delete("/:id", requireAdmin, assignmentHandler.Delete)

	// Grades
	grades := api.Group("/grades", authMiddleware.Required())
	grades.Put("/", authMiddleware.RequireRole(model.RoleTeacher), gradeHandler.Upsert)
	grades.Get("/me", requireStudent, gradeHandler.ListMyGrades)

	// Personality test results
	personality := api.Group("/personality", authMiddleware.Required())
	personality.Post("/", requireStudent, personalityHandler.Submit)
	personality.Get("/me", requireStudent, personalityHandler.GetMine)
	personality.Get("/:studentID", requireAdmin, personalityHandler.Get)
	personality.Delete("/:studentID", requireAdmin, personalityHandler.Reset)

	// Report cards. The literal segments "me", "export", and "archive"
	// are registered before the ":reportID" wildcards.
	reports := api.Group("/reports", authMiddleware.Required())
	reports.Put("/", requireTeacher, reportHandler.Upsert)
	reports.Get("/me", requireStudent, reportHandler.GetMine)
	reports.Get("/me/export/:format", requireStudent, exportHandler.ExportMine)
	reports.Get("/export/:format", requireAdmin, exportHandler.ExportAll)
	reports.Post("/archive", requireAdmin, exportHandler.Archive)
	reports.Get("/archive", requireAdmin, exportHandler.ListArchives)
	reports.Get("/:reportID", reportHandler.Get)
	reports.Get("/:reportID/export/:format", exportHandler.ExportOne)
}
