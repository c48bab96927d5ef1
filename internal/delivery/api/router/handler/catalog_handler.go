package handler

import (
	"net/http"

	"librarian/internal/delivery/api/response"
	"librarian/internal/errors"
	"librarian/internal/usecase"

	"github.com/labstack/echo/v4"
)

type authorRequest struct {
	Name        string `json:"name" validate:"required"`
	Nationality string `json:"nationality"`
	BirthDate   string `json:"birth_date"`
}

type editAuthorRequest struct {
	Name        *string `json:"name"`
	Nationality *string `json:"nationality"`
	BirthDate   *string `json:"birth_date"`
}

type bookRequest struct {
	Title           string `json:"title" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	PublicationYear int    `json:"publication_year" validate:"required,gt=0"`
	Publisher       string `json:"publisher"`
	AuthorID        uint64 `json:"author_id" validate:"required"`
}

type editBookRequest struct {
	Title           *string `json:"title"`
	ISBN            *string `json:"isbn"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gt=0"`
	Publisher       *string `json:"publisher"`
	AuthorID        *uint64 `json:"author_id" validate:"omitempty,gt=0"`
}

type copyRequest struct {
	BookID    uint64 `json:"book_id" validate:"required"`
	Condition string `json:"condition" validate:"required"`
	Available *bool  `json:"available"`
	BarCode   string `json:"bar_code" validate:"required"`
}

type editCopyRequest struct {
	Condition *string `json:"condition"`
	Available *bool   `json:"available"`
	BarCode   *string `json:"bar_code"`
}

// CatalogHandler exposes authors, books and copies.
type CatalogHandler struct {
	uc usecase.CatalogUsecase
}

// NewCatalogHandler is the constructor for CatalogHandler, injected by Fx.
func NewCatalogHandler(uc usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// --- Authors ---

func (h *CatalogHandler) CreateAuthor(c echo.Context) error {
	var req authorRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid author input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.uc.CreateAuthor(c.Request().Context(), &usecase.AuthorInput{
		Name:        req.Name,
		Nationality: req.Nationality,
		BirthDate:   req.BirthDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, author, "Author created successfully")
}

func (h *CatalogHandler) ListAuthors(c echo.Context) error {
	authors, err := h.uc.ListAuthors(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, authors, "Authors retrieved successfully")
}

func (h *CatalogHandler) GetAuthor(c echo.Context) error {
	author, err := h.uc.GetAuthor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, author, "Author retrieved successfully")
}

func (h *CatalogHandler) EditAuthor(c echo.Context) error {
	var req editAuthorRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid author input")
	}

	author, err := h.uc.EditAuthor(c.Request().Context(), c.Param("id"), &usecase.EditAuthorInput{
		Name:        req.Name,
		Nationality: req.Nationality,
		BirthDate:   req.BirthDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, author, "Author updated successfully")
}

func (h *CatalogHandler) DeleteAuthor(c echo.Context) error {
	if err := h.uc.DeleteAuthor(c.Request().Context(), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, nil, "Author deleted successfully")
}

// --- Books ---

func (h *CatalogHandler) CreateBook(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid book input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.uc.CreateBook(c.Request().Context(), &usecase.BookInput{
		Title:           req.Title,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Publisher:       req.Publisher,
		AuthorID:        req.AuthorID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, book, "Book created successfully")
}

func (h *CatalogHandler) ListBooks(c echo.Context) error {
	books, err := h.uc.ListBooks(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, books, "Books retrieved successfully")
}

func (h *CatalogHandler) GetBook(c echo.Context) error {
	book, err := h.uc.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, book, "Book retrieved successfully")
}

func (h *CatalogHandler) EditBook(c echo.Context) error {
	var req editBookRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid book input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.uc.EditBook(c.Request().Context(), c.Param("id"), &usecase.EditBookInput{
		Title:           req.Title,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Publisher:       req.Publisher,
		AuthorID:        req.AuthorID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, book, "Book updated successfully")
}

func (h *CatalogHandler) DeleteBook(c echo.Context) error {
	if err := h.uc.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, nil, "Book deleted successfully")
}

// --- Copies ---

func (h *CatalogHandler) CreateCopy(c echo.Context) error {
	var req copyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid copy input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	created, err := h.uc.CreateCopy(c.Request().Context(), &usecase.CopyInput{
		BookID:    req.BookID,
		Condition: req.Condition,
		Available: req.Available,
		BarCode:   req.BarCode,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, created, "Copy created successfully")
}

func (h *CatalogHandler) ListCopies(c echo.Context) error {
	copies, err := h.uc.ListCopies(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, copies, "Copies retrieved successfully")
}

func (h *CatalogHandler) ListCopiesByBook(c echo.Context) error {
	copies, err := h.uc.ListCopiesByBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, copies, "Copies retrieved successfully")
}

func (h *CatalogHandler) GetCopy(c echo.Context) error {
	found, err := h.uc.GetCopy(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, found, "Copy retrieved successfully")
}

func (h *CatalogHandler) EditCopy(c echo.Context) error {
	var req editCopyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid copy input")
	}

	edited, err := h.uc.EditCopy(c.Request().Context(), c.Param("id"), &usecase.EditCopyInput{
		Condition: req.Condition,
		Available: req.Available,
		BarCode:   req.BarCode,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, edited, "Copy updated successfully")
}

func (h *CatalogHandler) DeleteCopy(c echo.Context) error {
	if err := h.uc.DeleteCopy(c.Request().Context(), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, nil, "Copy deleted successfully")
}

// CopyLabel streams the QR label as a PNG, outside the JSON envelope.
func (h *CatalogHandler) CopyLabel(c echo.Context) error {
	png, err := h.uc.CopyLabel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set("Content-Disposition", `inline; filename="copy-`+c.Param("id")+`.png"`)

	return c.Blob(http.StatusOK, "image/png", png)
}
