package catalog

import (
	"context"
	"errors"

	"github.com/fastprodman/campushub/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrBookNotFound = errors.New("book not found")
	ErrItemNotFound = errors.New("menu item not found")
)

// Catalog serves read-only reference data.
type Catalog interface {
	User(ctx context.Context, userID string) (models.User, error)
	Users(ctx context.Context) ([]models.User, error)

	Book(ctx context.Context, bookID string) (models.Book, error)
	// SearchBooks matches query against title and author, case-insensitively.
	SearchBooks(ctx context.Context, query string) ([]models.Book, error)
	// OpenLoans returns unreturned loans; an empty userID means all users.
	OpenLoans(ctx context.Context, userID string) ([]models.LibraryTransaction, error)
	Loans(ctx context.Context) ([]models.LibraryTransaction, error)

	MenuItem(ctx context.Context, itemID string) (models.CanteenItem, error)
	Menu(ctx context.Context) ([]models.CanteenItem, error)

	AcademicResources(ctx context.Context) ([]models.AcademicResource, error)
}
