package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsenselab/shelfmark/internal/auth"
	"github.com/skillsenselab/shelfmark/internal/book"
	"github.com/skillsenselab/shelfmark/internal/catalog"
	apperrors "github.com/skillsenselab/shelfmark/internal/errors"
	"github.com/skillsenselab/shelfmark/internal/logger"
)

// BookHandler serves the saved-books CRUD and the catalog search passthrough.
type BookHandler struct {
	books   *book.Repository
	catalog *catalog.Client
	log     *logger.Logger
}

// NewBookHandler creates the book handler.
func NewBookHandler(books *book.Repository, cat *catalog.Client, log *logger.Logger) *BookHandler {
	return &BookHandler{
		books:   books,
		catalog: cat,
		log:     log.WithComponent("books"),
	}
}

// Request bodies keep the Spanish field names the mobile client sends.

type saveBookRequest struct {
	GoogleBookID string `json:"googleBookId" binding:"required,bookid"`
	Title        string `json:"titulo" binding:"required"`
	Authors      string `json:"autores"`
	ImageURL     string `json:"imagenUrl"`
	Comment      string `json:"comentario"`
}

type updateBookRequest struct {
	Comment string `json:"comentario"`
}

// Create handles POST /api/libros. Saving a book the caller already has
// answers 200 with the existing row; a new save answers 201.
func (h *BookHandler) Create(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	var req saveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("googleBookId and titulo are required."))
		return
	}

	saved, created, err := h.books.Create(c.Request.Context(), identity.UserID, book.CreateInput{
		GoogleBookID: req.GoogleBookID,
		Title:        req.Title,
		Authors:      req.Authors,
		ImageURL:     req.ImageURL,
		Comment:      req.Comment,
	})
	if err != nil {
		RespondWithError(c, err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"message": "Libro ya guardado",
			"book":    saved,
		})
		return
	}

	h.log.Info("Book saved", map[string]interface{}{
		logger.FieldUserID: identity.UserID.String(),
		"book_id":          saved.ID.String(),
	})
	c.JSON(http.StatusCreated, gin.H{
		"message": "Libro guardado",
		"book":    saved,
	})
}

// List handles GET /api/libros, newest first.
func (h *BookHandler) List(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	books, err := h.books.List(c.Request.Context(), identity.UserID)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

// Update handles PUT /api/libros/:id, mutating only the comment.
func (h *BookHandler) Update(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondWithError(c, apperrors.NotFound("book"))
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("Request body must be JSON with a comentario field."))
		return
	}

	updated, err := h.books.UpdateComment(c.Request.Context(), identity.UserID, bookID, req.Comment)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/libros/:id.
func (h *BookHandler) Delete(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondWithError(c, apperrors.NotFound("book"))
		return
	}

	if err := h.books.Delete(c.Request.Context(), identity.UserID, bookID); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Libro eliminado"})
}

// Search handles GET /api/books/search?q=, passing the free-text query
// through to the external catalog.
func (h *BookHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		RespondWithError(c, apperrors.InvalidInput("Query parameter q is required."))
		return
	}

	results, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
