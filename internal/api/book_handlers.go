package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagepace/pagepace-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns all books on the current user's shelf",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Add book",
		Description:   "Adds a book to the current user's shelf",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns one book with its reading progress",
		Tags:        []string{"Books"},
	}, s.handleGetBook)
}

// === DTOs ===

// CreateBookRequest is the request body for adding a book.
type CreateBookRequest struct {
	Title     string `json:"title" validate:"required,max=500" doc:"Book title"`
	Author    string `json:"author" required:"false" validate:"max=200" doc:"Author name"`
	PageCount int    `json:"page_count" required:"false" validate:"omitempty,gte=1,lte=50000" doc:"Total pages, 0 if unknown"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// BookResponse contains a book with progress in API responses.
type BookResponse struct {
	ID          string     `json:"id" doc:"Book ID"`
	Title       string     `json:"title" doc:"Book title"`
	Author      string     `json:"author,omitempty" doc:"Author name"`
	PageCount   int        `json:"page_count,omitempty" doc:"Total pages, 0 if unknown"`
	CurrentPage int        `json:"current_page" doc:"Latest page reached"`
	Status      string     `json:"status" doc:"Shelf status"`
	CompletedAt *time.Time `json:"completed_at,omitempty" doc:"When the book was finished"`
	CreatedAt   time.Time  `json:"created_at" doc:"When the book was added"`
}

// BookOutput wraps a single book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// ListBooksInput has no parameters; identity comes from context.
type ListBooksInput struct{}

// ListBooksResponse contains the user's shelf.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Books on the shelf"`
}

// ListBooksOutput wraps the shelf response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *ListBooksInput) (*ListBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Book.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	books := make([]BookResponse, len(shelf))
	for i, item := range shelf {
		books[i] = mapBookResponse(item)
	}
	return &ListBooksOutput{Body: ListBooksResponse{Books: books}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	created, err := s.services.Book.Create(ctx, userID, input.Body.Title, input.Body.Author, input.Body.PageCount)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(created)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Book.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(item)}, nil
}

// === Mappers ===

func mapBookResponse(item *service.BookWithProgress) BookResponse {
	return BookResponse{
		ID:          item.Book.ID,
		Title:       item.Book.Title,
		Author:      item.Book.Author,
		PageCount:   item.Book.PageCount,
		CurrentPage: item.Progress.CurrentPage,
		Status:      string(item.Progress.Status),
		CompletedAt: item.Progress.CompletedAt,
		CreatedAt:   item.Book.CreatedAt,
	}
}
