package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lendaround/item-share-backend/internal/booking"
	bookingHttp "github.com/lendaround/item-share-backend/internal/booking/http"
	"github.com/lendaround/item-share-backend/internal/identity"
	"github.com/lendaround/item-share-backend/internal/item"
	itemHttp "github.com/lendaround/item-share-backend/internal/item/http"
	"github.com/lendaround/item-share-backend/internal/user"
	userHttp "github.com/lendaround/item-share-backend/internal/user/http"
)

// Config carries the services and settings the router needs.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	UserService    user.Service
	ItemService    item.Service
	BookingService booking.Service
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, identity) and registers the
// module routes. User management is open; item and booking routes require
// the caller id header.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Logger logs request information; Recovery turns panics into 500s.
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", identity.Header}
	r.Use(cors.New(corsConfig))

	identityMiddleware := identity.Required()

	userHandler := userHttp.NewHandler(cfg.UserService)
	itemHandler := itemHttp.NewHandler(cfg.ItemService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	root := r.Group("")
	{
		userHttp.RegisterRoutes(root, userHandler)
		itemHttp.RegisterRoutes(root, itemHandler, identityMiddleware)
		bookingHttp.RegisterRoutes(root, bookingHandler, identityMiddleware)
	}

	return r
}
