package main

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/config"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/handler"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/middleware"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/repository"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/service"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	if err := seedRoles(db); err != nil {
		logger.Fatal("failed to seed roles", zap.Error(err))
	}
	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db, logger); err != nil {
			logger.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	if rdb == nil {
		logger.Warn("redis disabled, rate limiting and notification fan-out are off")
	}

	meiliClient := database.ConnectMeili(cfg)

	userRepo := repository.NewUserRepository(db)
	individualRepo := repository.NewIndividualRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taxonomyRepo := repository.NewTaxonomyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, rdb)
	leaderboardService := service.NewLeaderboardService(
		leaderboardRepo, userRepo, teamRepo, individualRepo, taxonomyRepo,
		notificationService, logger,
	)
	authService := service.NewAuthService(userRepo, cfg)
	individualService := service.NewIndividualService(individualRepo, userRepo, leaderboardService, logger)
	teamService := service.NewTeamService(teamRepo, userRepo, leaderboardRepo, leaderboardService, logger)
	taxonomyService := service.NewTaxonomyService(taxonomyRepo)
	searchService := service.NewMeiliSearchService(meiliClient, logger)
	projectService := service.NewProjectService(
		projectRepo, individualRepo, teamRepo, leaderboardService,
		searchService, notificationService, logger,
	)

	authHandler := handler.NewAuthHandler(authService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	individualHandler := handler.NewIndividualHandler(individualService)
	teamHandler := handler.NewTeamHandler(teamService)
	taxonomyHandler := handler.NewTaxonomyHandler(taxonomyService)
	projectHandler := handler.NewProjectHandler(projectService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg)

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		}

		leaderboard := api.Group("/leaderboard")
		{
			leaderboard.GET("", leaderboardHandler.GetLeaderboard)
			leaderboard.GET("/filters", leaderboardHandler.GetFilters)

			privileged := leaderboard.Group("")
			privileged.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
			{
				recomputeLimit := middleware.RateLimit(rdb, "leaderboard_recompute", cfg.RateLimitRecompute)
				privileged.POST("/update-rankings", recomputeLimit, leaderboardHandler.UpdateRankings)
				privileged.POST("/refresh", recomputeLimit, leaderboardHandler.Refresh)
				privileged.POST("/initialize", recomputeLimit, leaderboardHandler.Initialize)
			}
		}

		individual := api.Group("/individual")
		{
			individual.GET("/:id", individualHandler.GetByID)

			protected := individual.Group("")
			protected.Use(authMiddleware.RequireAuth())
			{
				protected.POST("", individualHandler.Create)
				protected.PUT("/:id", individualHandler.Update)
				protected.PUT("/:id/points", authMiddleware.RequireAdmin(), individualHandler.UpdatePoints)
				protected.DELETE("/:id", authMiddleware.RequireAdmin(), individualHandler.Delete)
			}
		}

		team := api.Group("/team")
		{
			team.GET("", teamHandler.List)
			team.GET("/top", teamHandler.GetTopTeams)
			team.GET("/:id", teamHandler.GetByID)

			protected := team.Group("")
			protected.Use(authMiddleware.RequireAuth())
			{
				protected.POST("", teamHandler.Create)
				protected.POST("/:id/member", teamHandler.AddMember)
				protected.PUT("/:id", teamHandler.Update)
				protected.PUT("/:id/points", authMiddleware.RequireAdmin(), teamHandler.UpdatePoints)
				protected.DELETE("/:id", teamHandler.Delete)
			}
		}

		project := api.Group("/project")
		{
			project.GET("", projectHandler.List)
			project.GET("/search", projectHandler.Search)
			project.GET("/:id", projectHandler.GetByID)

			protected := project.Group("")
			protected.Use(authMiddleware.RequireAuth())
			{
				protected.POST("", projectHandler.Create)
				protected.PUT("/:id", projectHandler.Update)
				protected.PUT("/:id/status", authMiddleware.RequireAdmin(), projectHandler.UpdateStatus)
				protected.DELETE("/:id", projectHandler.Delete)
			}
		}

		admin := func(h gin.HandlerFunc) []gin.HandlerFunc {
			return []gin.HandlerFunc{authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(), h}
		}

		techStack := api.Group("/techstack")
		{
			techStack.GET("", taxonomyHandler.ListTechStacks)
			techStack.POST("", admin(taxonomyHandler.CreateTechStack)...)
			techStack.DELETE("/:id", admin(taxonomyHandler.DeleteTechStack)...)
		}

		language := api.Group("/language")
		{
			language.GET("", taxonomyHandler.ListLanguages)
			language.POST("", admin(taxonomyHandler.CreateLanguage)...)
			language.DELETE("/:id", admin(taxonomyHandler.DeleteLanguage)...)
		}

		tag := api.Group("/tag")
		{
			tag.GET("", taxonomyHandler.ListTags)
			tag.POST("", admin(taxonomyHandler.CreateTag)...)
			tag.DELETE("/:id", admin(taxonomyHandler.DeleteTag)...)
		}

		interest := api.Group("/interest")
		{
			interest.GET("", taxonomyHandler.ListInterests)
			interest.POST("", admin(taxonomyHandler.CreateInterest)...)
			interest.DELETE("/:id", admin(taxonomyHandler.DeleteInterest)...)
		}

		notification := api.Group("/notification")
		notification.Use(authMiddleware.RequireAuth())
		{
			notification.GET("", notificationHandler.GetNotifications)
			notification.GET("/unread-count", notificationHandler.UnreadCount)
			notification.PUT("/:id/read", notificationHandler.MarkAsRead)
			notification.PUT("/read-all", notificationHandler.MarkAllAsRead)
		}
	}

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func newLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.UserDetail{},
		&model.Individual{},
		&model.Team{},
		&model.TeamMember{},
		&model.TechStack{},
		&model.Language{},
		&model.Tag{},
		&model.Interest{},
		&model.Project{},
		&model.LeaderboardEntry{},
		&model.ScoreLog{},
		&model.Notification{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Super administrator"},
		{Name: "member", Description: "Club member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB, logger *zap.Logger) error {
	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@cyberhunter.club").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Email:        "admin@cyberhunter.club",
		PasswordHash: string(hashed),
		RoleID:       &adminRole.ID,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	adminDetail := model.UserDetail{
		UserID: adminUser.ID,
		Name:   "Administrator",
	}
	if err := db.Create(&adminDetail).Error; err != nil {
		return err
	}

	logger.Info("admin user seeded")
	return nil
}
