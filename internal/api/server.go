package api

import (
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/portalevent/portal-api/docs"
	v1 "github.com/portalevent/portal-api/internal/api/handler/v1"
	"github.com/portalevent/portal-api/internal/api/middleware"
	"github.com/portalevent/portal-api/internal/config"
	"github.com/portalevent/portal-api/internal/pkg/certificate"
	"github.com/portalevent/portal-api/internal/pkg/filestore"
	"github.com/portalevent/portal-api/internal/pkg/ticket"
	"github.com/portalevent/portal-api/internal/repository"
	"github.com/portalevent/portal-api/internal/repository/dao"
	"github.com/portalevent/portal-api/internal/service"
)

// Dependencies are the outside collaborators built by the caller.
// Redis is optional and disables lookup rate limiting when nil.
type Dependencies struct {
	Files    *filestore.Store
	Notifier service.Notifier
	Redis    *redis.Client
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	deps Dependencies
}

type handlers struct {
	auth         *v1.AuthHandler
	user         *v1.UserHandler
	event        *v1.EventHandler
	registration *v1.RegistrationHandler
	certificate  *v1.CertificateHandler
	blacklist    *v1.BlacklistHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, deps Dependencies) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		deps:   deps,
	}

	s.MountMiddlewares()
	s.MountHandlers(s.initHandlers(db))

	return s
}

func (s *Server) initHandlers(db *gorm.DB) handlers {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	participantRepo := repository.NewParticipantRepository(dao.NewParticipantDAO(db))
	blacklistRepo := repository.NewBlacklistRepository(dao.NewBlacklistDAO(db))

	uSvc := service.NewUserService(userRepo)
	authSvc := service.NewAuthService(userRepo, service.NewOrganizerElevation(userRepo))
	eventSvc := service.NewEventService(eventRepo, userRepo, s.deps.Notifier, s.Config.API.PublicURL)
	registrationSvc := service.NewRegistrationService(
		participantRepo,
		eventRepo,
		blacklistRepo,
		ticket.NewGenerator(s.Config.API.PublicURL),
		s.deps.Files,
		s.deps.Notifier,
	)
	certificateSvc := service.NewCertificateService(participantRepo, eventRepo, certificate.NewRenderer())
	blacklistSvc := service.NewBlacklistService(blacklistRepo)
	posterSvc := service.NewPosterService(eventRepo, s.deps.Files)

	return handlers{
		auth:  v1.NewAuthHandler(s.Config.API, authSvc),
		user:  v1.NewUserHandler(uSvc),
		event: v1.NewEventHandler(
			eventSvc,
			posterSvc,
			uSvc,
			s.Config.Storage.PublicPrefix,
			s.Config.Storage.MaxUploadBytes,
		),
		registration: v1.NewRegistrationHandler(
			registrationSvc,
			uSvc,
			s.Config.Storage.PublicPrefix,
			s.Config.Storage.MaxUploadBytes,
		),
		certificate: v1.NewCertificateHandler(certificateSvc, uSvc),
		blacklist:   v1.NewBlacklistHandler(blacklistSvc, uSvc),
	}
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()
	limiter := middleware.NewRateLimiter(s.deps.Redis, s.Config.Redis.LookupLimit, s.Config.Redis.LookupWindow)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", h.auth.HandleSignup)
		public.POST("/auth/login", h.auth.HandleLogin)

		public.GET("/events", h.event.HandleListEvents)
		public.GET("/events/:slug", h.event.HandleGetEvent)
		public.POST("/events/:slug/register", h.registration.HandleRegister)
		public.POST("/tickets/lookup", limiter.Limit("lookup"), h.registration.HandleLookup)
	}

	private := s.Router.Group(basePath, verifyJWT)
	{
		private.GET("/me", h.user.HandleGetMe)
		private.GET("/me/registrations", h.registration.HandleMyRegistrations)
		private.GET("/scan/:token", h.registration.HandleScan)
		private.GET("/certificates/:token", h.certificate.HandleDownloadCertificate)
	}

	dashboard := s.Router.Group(basePath+"/dashboard", verifyJWT)
	{
		dashboard.GET("/events", h.event.HandleDashboard)
		dashboard.POST("/events", h.event.HandleSubmitEvent)
		dashboard.PUT("/events/:eventID", h.event.HandleUpdateEvent)
		dashboard.PUT("/events/:eventID/poster", h.event.HandleUploadPoster)
		dashboard.POST("/events/:eventID/finish", h.event.HandleFinishEvent)
		dashboard.GET("/events/:eventID/participants", h.registration.HandleListParticipants)
		dashboard.GET("/events/:eventID/participants/export", h.registration.HandleExportParticipants)
		dashboard.GET("/events/:eventID/revenue", h.registration.HandleRevenue)
		dashboard.POST("/events/:eventID/blast", h.registration.HandleBlastEmail)
		dashboard.POST("/participants/:participantID/verify", h.registration.HandleVerifyPayment)
		dashboard.GET("/participants/:participantID/payment-proof", h.registration.HandleDownloadPaymentProof)
	}

	admin := s.Router.Group(basePath+"/admin", verifyJWT)
	{
		admin.GET("/events/pending", h.event.HandleApprovalQueue)
		admin.POST("/events/:eventID/approve", h.event.HandleApproveEvent)
		admin.POST("/events/:eventID/reject", h.event.HandleRejectEvent)
		admin.GET("/blacklist", h.blacklist.HandleListBlacklist)
		admin.POST("/blacklist", h.blacklist.HandleAddBlacklist)
		admin.DELETE("/blacklist/:email", h.blacklist.HandleRemoveBlacklist)
	}

	// Ticket QR codes encode {public_url}/scan/{token}/.
	s.Router.GET("/scan/:token", verifyJWT, h.registration.HandleScan)

	// Payment proofs are only reachable through the dashboard.
	if s.deps.Files != nil {
		prefix := strings.TrimRight(s.Config.Storage.PublicPrefix, "/")
		for _, dir := range []string{filestore.TicketDir, filestore.PosterDir} {
			s.Router.StaticFS(prefix+"/"+dir, s.deps.Files.PublicFileSystem(dir))
		}
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event Portal API"
	docs.SwaggerInfo.Description = "Event submission, registration and ticketing."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
