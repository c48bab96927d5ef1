// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"librarian/config"
	"librarian/internal/delivery/api/middleware"
	"librarian/internal/delivery/api/router/handler"
	"librarian/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const defaultMetricsPath = "/metrics"

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	RentalHandler  *handler.RentalHandler
	ClientHandler  *handler.ClientHandler
	CatalogHandler *handler.CatalogHandler
	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	rentalHandler  *handler.RentalHandler
	clientHandler  *handler.ClientHandler
	catalogHandler *handler.CatalogHandler
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		rentalHandler:  params.RentalHandler,
		clientHandler:  params.ClientHandler,
		catalogHandler: params.CatalogHandler,
		authMiddleware: params.AuthMiddleware,
		metrics:        params.Metrics,
		config:         params.Config,
	}
}

// MetricsPath returns the scrape path, or "" when metrics are disabled.
func MetricsPath(cfg *config.Config) string {
	if cfg.Metrics == nil || !cfg.Metrics.Enabled {
		return ""
	}
	if cfg.Metrics.Path == "" {
		return defaultMetricsPath
	}

	return cfg.Metrics.Path
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Public endpoints
	e.GET("/health", handler.HealthCheck)
	if path := MetricsPath(r.config); path != "" {
		e.GET(path, echo.WrapHandler(r.metrics.Handler()))
	}

	apiV1 := e.Group("/api/v1")
	apiV1.GET("/health", handler.HealthCheck)

	// Registration and login stay public; everything else needs a bearer token.
	publicUsers := apiV1.Group("/users")
	{
		publicUsers.POST("/register", r.userHandler.RegisterUser)
		publicUsers.POST("/login", r.userHandler.Login)
	}

	auth := r.authMiddleware.Authenticate

	usersGroup := apiV1.Group("/users", auth)
	{
		usersGroup.GET("", r.userHandler.ListUsers)
		usersGroup.GET("/:id", r.userHandler.GetUser)
		usersGroup.PUT("/:id", r.userHandler.EditUser)
		usersGroup.DELETE("/:id", r.userHandler.DeleteUser)
	}

	rentalsGroup := apiV1.Group("/rentals", auth)
	{
		rentalsGroup.POST("/register", r.rentalHandler.CreateRental)
		rentalsGroup.GET("", r.rentalHandler.ListRentals)
		rentalsGroup.GET("/:id", r.rentalHandler.GetRental)
		rentalsGroup.PUT("/:id/finish", r.rentalHandler.FinishRental)
		rentalsGroup.DELETE("/:id", r.rentalHandler.DeleteRental)
	}

	clientsGroup := apiV1.Group("/clients", auth)
	{
		clientsGroup.POST("/register", r.clientHandler.RegisterClient)
		clientsGroup.GET("", r.clientHandler.ListClients)
		clientsGroup.GET("/:cpf", r.clientHandler.GetClient)
	}

	authorsGroup := apiV1.Group("/authors", auth)
	{
		authorsGroup.POST("/register", r.catalogHandler.CreateAuthor)
		authorsGroup.GET("", r.catalogHandler.ListAuthors)
		authorsGroup.GET("/:id", r.catalogHandler.GetAuthor)
		authorsGroup.PUT("/:id", r.catalogHandler.EditAuthor)
		authorsGroup.DELETE("/:id", r.catalogHandler.DeleteAuthor)
	}

	booksGroup := apiV1.Group("/books", auth)
	{
		booksGroup.POST("/register", r.catalogHandler.CreateBook)
		booksGroup.GET("", r.catalogHandler.ListBooks)
		booksGroup.GET("/:id", r.catalogHandler.GetBook)
		booksGroup.GET("/:id/copies", r.catalogHandler.ListCopiesByBook)
		booksGroup.PUT("/:id", r.catalogHandler.EditBook)
		booksGroup.DELETE("/:id", r.catalogHandler.DeleteBook)
	}

	copiesGroup := apiV1.Group("/copies", auth)
	{
		copiesGroup.POST("/register", r.catalogHandler.CreateCopy)
		copiesGroup.GET("", r.catalogHandler.ListCopies)
		copiesGroup.GET("/:id", r.catalogHandler.GetCopy)
		copiesGroup.GET("/:id/label", r.catalogHandler.CopyLabel)
		copiesGroup.PUT("/:id", r.catalogHandler.EditCopy)
		copiesGroup.DELETE("/:id", r.catalogHandler.DeleteCopy)
	}
}
