package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/shelfmark/internal/auth"
	"github.com/skillsenselab/shelfmark/internal/book"
	"github.com/skillsenselab/shelfmark/internal/catalog"
	"github.com/skillsenselab/shelfmark/internal/database"
	"github.com/skillsenselab/shelfmark/internal/logger"
	"github.com/skillsenselab/shelfmark/internal/user"
)

// Dependencies carries everything the route handlers need. All of it is
// injected from the entry point; handlers share no mutable state across
// requests.
type Dependencies struct {
	DB      *database.DB
	Users   *user.Repository
	Books   *book.Repository
	Hasher  auth.Hasher
	Tokens  *auth.TokenService
	Catalog *catalog.Client
	Auth    auth.Config
	Log     *logger.Logger
}

// RegisterRoutes installs the API route table on the engine.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	registerValidations()

	authHandler := NewAuthHandler(deps.Users, deps.Hasher, deps.Tokens, deps.Auth, deps.Log)
	bookHandler := NewBookHandler(deps.Books, deps.Catalog, deps.Log)

	r.GET("/health", Health(deps.DB))

	requireAuth := auth.Middleware(deps.Tokens)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/profile", requireAuth, authHandler.Profile)
	}

	libros := r.Group("/api/libros", requireAuth)
	{
		libros.POST("", bookHandler.Create)
		libros.GET("", bookHandler.List)
		libros.PUT("/:id", bookHandler.Update)
		libros.DELETE("/:id", bookHandler.Delete)
	}

	books := r.Group("/api/books", requireAuth)
	{
		books.GET("/search", bookHandler.Search)
	}
}
