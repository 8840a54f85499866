package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/localmarkets/marketplace/docs"
	v1 "github.com/localmarkets/marketplace/internal/api/handler/v1"
	"github.com/localmarkets/marketplace/internal/api/middleware"
	"github.com/localmarkets/marketplace/internal/config"
	"github.com/localmarkets/marketplace/internal/marketday"
	"github.com/localmarkets/marketplace/internal/repository"
	"github.com/localmarkets/marketplace/internal/repository/dao"
	"github.com/localmarkets/marketplace/internal/service"
	"github.com/localmarkets/marketplace/internal/web"
)

const (
	sessionName            = "lm_session"
	limiterCleanupInterval = time.Minute
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	db      *gorm.DB
	media   service.MediaStore
	calc    *marketday.Calculator
	limiter *middleware.RateLimiter
	stop    chan struct{}
}

type handlers struct {
	auth    *v1.AuthHandler
	market  *v1.MarketHandler
	product *v1.ProductHandler
	vendor  *v1.VendorHandler
	health  *v1.HealthHandler
	web     *web.Handler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, media service.MediaStore, calc *marketday.Calculator) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		db:      db,
		media:   media,
		calc:    calc,
		limiter: middleware.NewRateLimiter(conf.RateLimit.RPS, conf.RateLimit.Burst),
		stop:    make(chan struct{}),
	}

	s.MountMiddlewares()

	h, err := s.initHandlers()
	if err != nil {
		return nil, err
	}
	if err = s.MountHandlers(h); err != nil {
		return nil, err
	}

	s.limiter.StartCleanup(limiterCleanupInterval, s.stop)

	return s, nil
}

func (s *Server) initHandlers() (*handlers, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("s.db.DB -> %w", err)
	}

	userRepo := repository.NewUserRepository(dao.NewUserDAO(s.db))
	vendorRepo := repository.NewVendorRepository(dao.NewVendorDAO(s.db))
	marketRepo := repository.NewMarketRepository(dao.NewMarketDAO(s.db))
	productRepo := repository.NewProductRepository(dao.NewProductDAO(s.db))

	authSvc := service.NewAuthService(userRepo, marketRepo)
	userSvc := service.NewUserService(userRepo)
	marketSvc := service.NewMarketService(marketRepo, s.calc)
	vendorSvc := service.NewVendorService(vendorRepo)
	productSvc := service.NewProductService(productRepo, vendorRepo, s.media)

	return &handlers{
		auth:    v1.NewAuthHandler(s.Config.API, authSvc, userSvc),
		market:  v1.NewMarketHandler(marketSvc),
		product: v1.NewProductHandler(productSvc),
		vendor:  v1.NewVendorHandler(vendorSvc),
		health:  v1.NewHealthHandler(sqlDB),
		web:     web.NewHandler(marketSvc, productSvc, vendorSvc, authSvc),
	}, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.Metrics())

	store := cookie.NewStore([]byte(s.Config.API.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(s.Config.API.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Config.API.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
	s.Router.Use(sessions.Sessions(sessionName, store))
}

func (s *Server) MountHandlers(h *handlers) error {
	const basePath = "/api"

	requireUser := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).RequireUser()

	auth := s.Router.Group(basePath + "/auth")
	{
		auth.POST("/register", s.limiter.Handler(), h.auth.HandleRegister)
		auth.POST("/login", s.limiter.Handler(), h.auth.HandleLogin)
		auth.POST("/logout", h.auth.HandleLogout)
		auth.GET("/session", requireUser, h.auth.HandleSession)
	}

	markets := s.Router.Group(basePath + "/markets")
	{
		markets.GET("", h.market.HandleListMarkets)
		markets.GET("/search", h.market.HandleSearchMarkets)
		markets.POST("/suggestions", s.limiter.Handler(), h.market.HandleSuggestMarket)
		markets.GET("/:marketID", h.market.HandleGetMarket)
	}

	products := s.Router.Group(basePath + "/products")
	{
		products.GET("", h.product.HandleListProducts)
		products.GET("/search", h.product.HandleSearchProducts)
		products.GET("/market/:marketID", h.product.HandleListMarketProducts)
		products.GET("/:productID", h.product.HandleGetProduct)
		products.POST("", requireUser, h.product.HandleCreateProduct)
		products.PUT("/:productID", requireUser, h.product.HandleUpdateProduct)
		products.DELETE("/:productID", requireUser, h.product.HandleDeleteProduct)
	}

	vendor := s.Router.Group(basePath+"/vendor", requireUser)
	{
		vendor.GET("/dashboard", h.vendor.HandleGetDashboard)
		vendor.GET("/products", h.product.HandleListOwnProducts)
		vendor.POST("/goods", h.vendor.HandleAddGood)
		vendor.DELETE("/goods", h.vendor.HandleRemoveGood)
	}

	s.Router.GET("/healthz", h.health.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Local Markets API"
	docs.SwaggerInfo.Description = "Markets, vendors and their products."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return h.web.Mount(s.Router)
}

// Shutdown stops background work owned by the server.
func (s *Server) Shutdown() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}
