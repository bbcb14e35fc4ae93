package main

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/penpal-app/penpal-api/internal/config"
	"github.com/penpal-app/penpal-api/internal/database"
	"github.com/penpal-app/penpal-api/internal/handlers"
	"github.com/penpal-app/penpal-api/internal/logger"
	"github.com/penpal-app/penpal-api/internal/middleware"
	"github.com/penpal-app/penpal-api/internal/repository"
	"github.com/penpal-app/penpal-api/internal/services"
	"github.com/penpal-app/penpal-api/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.Log.Level)
	log := logger.Logger()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Optional object storage for media uploads
	var blobStore storage.BlobStore
	if cfg.Storage.Enabled {
		minioStore, err := storage.NewMinioStore(cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to object storage")
		}
		blobStore = minioStore
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	tagRepo := repository.NewTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, cfg.JWT)
	docService := services.NewDocumentService(docRepo, tagRepo)
	tagService := services.NewTagService(tagRepo)
	commentService := services.NewCommentService(commentRepo, docRepo)
	mediaService := services.NewMediaService(mediaRepo, docRepo)
	auditService := services.NewAuditService(auditRepo)
	registerAuditTargets(auditService, userRepo, docRepo, tagRepo, commentRepo, mediaRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, auditService)
	docHandler := handlers.NewDocumentHandler(docService, auditService)
	tagHandler := handlers.NewTagHandler(tagService, auditService)
	commentHandler := handlers.NewCommentHandler(commentService, auditService)
	mediaHandler := handlers.NewMediaHandler(mediaService, auditService, blobStore)

	// Router
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/api/health", handlers.Health)

	api := r.Group("/api")
	{
		// User routes
		users := api.Group("/users")
		{
			users.POST("/register", authHandler.Register)
			users.POST("/login", authHandler.Login)
			users.POST("/refresh", authHandler.Refresh)
			users.POST("/logout", middleware.RequireAuth(cfg.JWT.Secret), authHandler.Logout)
			users.GET("/profile", middleware.RequireAuth(cfg.JWT.Secret), authHandler.GetProfile)
			users.PUT("/profile", middleware.RequireAuth(cfg.JWT.Secret), authHandler.UpdateProfile)
			users.PATCH("/profile", middleware.RequireAuth(cfg.JWT.Secret), authHandler.UpdateProfile)
		}

		// Document routes. Reads work anonymously for public documents, so
		// they take the optional variant.
		docs := api.Group("/documents")
		{
			docs.GET("/docs", middleware.OptionalAuth(cfg.JWT.Secret), docHandler.ListDocuments)
			docs.POST("/docs", middleware.RequireAuth(cfg.JWT.Secret), docHandler.CreateDocument)
			docs.GET("/docs/:id", middleware.OptionalAuth(cfg.JWT.Secret), docHandler.GetDocument)
			docs.PUT("/docs/:id", middleware.RequireAuth(cfg.JWT.Secret), docHandler.UpdateDocument)
			docs.PATCH("/docs/:id", middleware.RequireAuth(cfg.JWT.Secret), docHandler.UpdateDocument)
			docs.DELETE("/docs/:id", middleware.RequireAuth(cfg.JWT.Secret), docHandler.DeleteDocument)
			docs.GET("/stats", middleware.RequireAuth(cfg.JWT.Secret), docHandler.DocumentStats)

			docs.GET("/docs/:id/comments", middleware.OptionalAuth(cfg.JWT.Secret), commentHandler.ListComments)
			docs.POST("/docs/:id/comments", middleware.RequireAuth(cfg.JWT.Secret), commentHandler.CreateComment)
			docs.GET("/comments/:id", middleware.OptionalAuth(cfg.JWT.Secret), commentHandler.GetComment)
			docs.PUT("/comments/:id", middleware.RequireAuth(cfg.JWT.Secret), commentHandler.UpdateComment)
			docs.PATCH("/comments/:id", middleware.RequireAuth(cfg.JWT.Secret), commentHandler.UpdateComment)
			docs.DELETE("/comments/:id", middleware.RequireAuth(cfg.JWT.Secret), commentHandler.DeleteComment)

			docs.GET("/tags", tagHandler.ListTags)
			docs.POST("/tags", middleware.RequireAuth(cfg.JWT.Secret), tagHandler.CreateTag)
			docs.GET("/tags/:id", tagHandler.GetTag)
			docs.PUT("/tags/:id", middleware.RequireAuth(cfg.JWT.Secret), tagHandler.UpdateTag)
			docs.PATCH("/tags/:id", middleware.RequireAuth(cfg.JWT.Secret), tagHandler.UpdateTag)
			docs.DELETE("/tags/:id", middleware.RequireAuth(cfg.JWT.Secret), tagHandler.DeleteTag)

			docs.GET("/docs/:id/media", middleware.OptionalAuth(cfg.JWT.Secret), mediaHandler.ListMedia)
			docs.POST("/docs/:id/media", middleware.RequireAuth(cfg.JWT.Secret), mediaHandler.CreateMedia)
			docs.GET("/media/:id", middleware.OptionalAuth(cfg.JWT.Secret), mediaHandler.GetMedia)
			docs.DELETE("/media/:id", middleware.RequireAuth(cfg.JWT.Secret), mediaHandler.DeleteMedia)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("Server starting")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

// registerAuditTargets wires each audit target type to the lookup that
// resolves its weak reference.
func registerAuditTargets(
	audit *services.AuditService,
	userRepo repository.UserRepository,
	docRepo repository.DocumentRepository,
	tagRepo repository.TagRepository,
	commentRepo repository.CommentRepository,
	mediaRepo repository.MediaRepository,
) {
	audit.RegisterTarget(services.TargetUser, func(id string) (any, error) {
		userID, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return nil, err
		}
		return userRepo.FindByID(userID)
	})
	audit.RegisterTarget(services.TargetDocument, func(id string) (any, error) {
		docID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		return docRepo.FindByIDAny(docID)
	})
	audit.RegisterTarget(services.TargetTag, func(id string) (any, error) {
		tagID, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return nil, err
		}
		return tagRepo.FindByID(tagID)
	})
	audit.RegisterTarget(services.TargetComment, func(id string) (any, error) {
		commentID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		return commentRepo.FindByID(commentID)
	})
	audit.RegisterTarget(services.TargetMedia, func(id string) (any, error) {
		mediaID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		return mediaRepo.FindByID(mediaID)
	})
}
