package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendaround/item-share-backend/internal/api"
	"github.com/lendaround/item-share-backend/internal/booking"
	"github.com/lendaround/item-share-backend/internal/item"
	"github.com/lendaround/item-share-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router *gin.Engine
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo)

	// Item and Booking Modules. The booking service reads items straight
	// from the item repository so construction stays one-directional; the
	// item service then consumes the booking service for view enrichment.
	itemRepo := item.NewPgxRepository(cfg.DBPool)
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, itemRepo, userService)
	itemService := item.NewService(itemRepo, userService, bookingService)

	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		UserService:    userService,
		ItemService:    itemService,
		BookingService: bookingService,
	})

	return &Container{
		Router: router,
	}
}
