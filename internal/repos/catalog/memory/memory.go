package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/catalog"
	"github.com/fastprodman/campushub/internal/repos/seed"
)

var _ catalog.Catalog = (*catalogRepo)(nil)

// catalogRepo is immutable after construction, so it needs no locking.
type catalogRepo struct {
	users     []models.User
	books     []models.Book
	loans     []models.LibraryTransaction
	menu      []models.CanteenItem
	resources []models.AcademicResource
}

func New(data seed.Data) *catalogRepo {
	return &catalogRepo{
		users:     slices.Clone(data.Users),
		books:     slices.Clone(data.Books),
		loans:     slices.Clone(data.Loans),
		menu:      slices.Clone(data.Menu),
		resources: slices.Clone(data.AcademicResources),
	}
}

func (r *catalogRepo) User(_ context.Context, userID string) (models.User, error) {
	i := slices.IndexFunc(r.users, func(u models.User) bool { return u.ID == userID })
	if i < 0 {
		return models.User{}, catalog.ErrUserNotFound
	}

	return r.users[i], nil
}

func (r *catalogRepo) Users(_ context.Context) ([]models.User, error) {
	return slices.Clone(r.users), nil
}

func (r *catalogRepo) Book(_ context.Context, bookID string) (models.Book, error) {
	i := slices.IndexFunc(r.books, func(b models.Book) bool { return b.ID == bookID })
	if i < 0 {
		return models.Book{}, catalog.ErrBookNotFound
	}

	return r.books[i], nil
}

func (r *catalogRepo) SearchBooks(_ context.Context, query string) ([]models.Book, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Book, 0, len(r.books))
	for _, b := range r.books {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}

	return out, nil
}

func (r *catalogRepo) OpenLoans(_ context.Context, userID string) ([]models.LibraryTransaction, error) {
	out := make([]models.LibraryTransaction, 0)
	for _, lt := range r.loans {
		if !lt.Open() {
			continue
		}

		if userID != "" && lt.UserID != userID {
			continue
		}

		out = append(out, lt)
	}

	return out, nil
}

func (r *catalogRepo) Loans(_ context.Context) ([]models.LibraryTransaction, error) {
	return slices.Clone(r.loans), nil
}

func (r *catalogRepo) MenuItem(_ context.Context, itemID string) (models.CanteenItem, error) {
	i := slices.IndexFunc(r.menu, func(it models.CanteenItem) bool { return it.ID == itemID })
	if i < 0 {
		return models.CanteenItem{}, catalog.ErrItemNotFound
	}

	return r.menu[i], nil
}

func (r *catalogRepo) Menu(_ context.Context) ([]models.CanteenItem, error) {
	return slices.Clone(r.menu), nil
}

func (r *catalogRepo) AcademicResources(_ context.Context) ([]models.AcademicResource, error) {
	return slices.Clone(r.resources), nil
}
