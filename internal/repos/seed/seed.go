// Package seed holds the reference data every store is bootstrapped with.
// The postgres dev migration in cmd/migrator/test_data mirrors these values.
package seed

import (
	"time"

	"github.com/fastprodman/campushub/internal/models"
)

// LedgerEntry is a historical wallet movement replayed at bootstrap.
type LedgerEntry struct {
	UserID      string
	AmountMinor int64
	Type        models.TxType
	Description string
	Date        time.Time
}

type Data struct {
	Users             []models.User
	Books             []models.Book
	Loans             []models.LibraryTransaction
	Menu              []models.CanteenItem
	AcademicResources []models.AcademicResource
	// Wallets lists the users that own a wallet. Balances are derived from Ledger.
	Wallets []string
	Ledger  []LedgerEntry
	Orders  []models.CanteenOrder
	Fines   []models.Fine
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return t
}

func instant(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}

	return t
}

// Default returns a fresh copy of the campus fixtures.
//
//nolint:funlen
func Default() Data {
	menu := []models.CanteenItem{
		{ID: "c1", Name: "Veggie Burger", Category: "Main Course", PriceMinor: 599, ImageURL: "https://picsum.photos/seed/burger/400/300", Rating: 4.5},
		{ID: "c2", Name: "Chicken Pasta", Category: "Main Course", PriceMinor: 750, ImageURL: "https://picsum.photos/seed/pasta/400/300", Rating: 4.8},
		{ID: "c3", Name: "Iced Coffee", Category: "Beverages", PriceMinor: 300, ImageURL: "https://picsum.photos/seed/coffee/400/300", Rating: 4.7},
		{ID: "c4", Name: "Caesar Salad", Category: "Salads", PriceMinor: 450, ImageURL: "https://picsum.photos/seed/salad/400/300", Rating: 4.2},
		{ID: "c5", Name: "Fruit Bowl", Category: "Snacks", PriceMinor: 350, ImageURL: "https://picsum.photos/seed/fruit/400/300", Rating: 4.9},
		{ID: "c6", Name: "Margherita Pizza", Category: "Main Course", PriceMinor: 899, ImageURL: "https://picsum.photos/seed/pizza/400/300", Rating: 4.6},
	}

	return Data{
		Users: []models.User{
			{ID: "u1", Name: "Alex Johnson", AvatarURL: "https://i.pravatar.cc/150?u=alex", Campus: "North Campus", Role: models.RoleStudent},
			{ID: "u2", Name: "Maria Garcia", AvatarURL: "https://i.pravatar.cc/150?u=maria", Campus: "South Campus", Role: models.RoleStudent},
			{ID: "f1", Name: "Dr. Ben Carter", AvatarURL: "https://i.pravatar.cc/150?u=ben", Campus: "Main Campus", Role: models.RoleFaculty},
			{ID: "a1", Name: "Dr. Evelyn Reed", AvatarURL: "https://i.pravatar.cc/150?u=evelyn", Campus: "Main Campus", Role: models.RoleAdmin},
		},
		Books: []models.Book{
			{ID: "b1", Title: "The Digital Fortress", Author: "Dan Brown", CoverURL: "https://picsum.photos/seed/df/300/400", Campus: "North Campus", IsAvailable: true},
			{ID: "b2", Title: "Structure and Interpretation of Computer Programs", Author: "Harold Abelson", CoverURL: "https://picsum.photos/seed/sicp/300/400", Campus: "Main Campus", IsAvailable: false},
			{ID: "b3", Title: "Clean Code", Author: "Robert C. Martin", CoverURL: "https://picsum.photos/seed/cc/300/400", Campus: "South Campus", IsAvailable: true},
			{ID: "b4", Title: "Introduction to Algorithms", Author: "Thomas H. Cormen", CoverURL: "https://picsum.photos/seed/ita/300/400", Campus: "North Campus", IsAvailable: true},
			{ID: "b5", Title: "Design Patterns", Author: "Erich Gamma", CoverURL: "https://picsum.photos/seed/dp/300/400", Campus: "Main Campus", IsAvailable: false},
		},
		Loans: []models.LibraryTransaction{
			{ID: "lt1", BookID: "b2", UserID: "u1", IssueDate: day("2023-10-01"), DueDate: day("2023-10-15")},
			{ID: "lt2", BookID: "b5", UserID: "u1", IssueDate: day("2023-10-05"), DueDate: day("2023-10-19")},
		},
		Menu: menu,
		AcademicResources: []models.AcademicResource{
			{ID: "ar1", Title: "Advanced React Hooks Notes", Type: models.ResourceNotes, Uploader: "Maria Garcia", Campus: "South Campus", DownloadURL: "#", Description: "Comprehensive notes covering useEffect, useCallback, and custom hooks."},
			{ID: "ar2", Title: "AI/ML Project Kit: Image Recognition", Type: models.ResourceProjectKit, Uploader: "Admin", Campus: "Main Campus", DownloadURL: "#", Description: "Starter kit with datasets and Python notebooks for an image recognition project."},
			{ID: "ar3", Title: "Quantum Computing Research Paper", Type: models.ResourcePaper, Uploader: "Dr. Evelyn Reed", Campus: "Main Campus", DownloadURL: "#", Description: "A paper on the latest advancements in quantum entanglement."},
		},
		Wallets: []string{"u1", "u2", "f1"},
		// u1 ends at 75.50: 99.49 - 8.99 - 15.00.
		Ledger: []LedgerEntry{
			{UserID: "u1", AmountMinor: 9949, Type: models.TxCredit, Description: "Initial wallet top-up", Date: instant("2023-10-01T10:00:00Z")},
			{UserID: "u1", AmountMinor: 899, Type: models.TxDebit, Description: "Canteen Order #101", Date: instant("2023-10-19T12:30:00Z")},
			{UserID: "u1", AmountMinor: 1500, Type: models.TxDebit, Description: "Canteen Order #102", Date: instant("2023-10-20T13:00:00Z")},
			{UserID: "u2", AmountMinor: 12000, Type: models.TxCredit, Description: "Initial wallet top-up", Date: instant("2023-10-01T10:00:00Z")},
			{UserID: "f1", AmountMinor: 25000, Type: models.TxCredit, Description: "Initial wallet top-up", Date: instant("2023-10-01T10:00:00Z")},
		},
		Orders: []models.CanteenOrder{
			{
				ID:         "o1",
				UserID:     "u1",
				Items:      []models.OrderItem{{Item: menu[0], Quantity: 1}, {Item: menu[2], Quantity: 1}},
				TotalMinor: 899,
				Status:     models.OrderCompleted,
				OrderDate:  instant("2023-10-19T12:30:00Z"),
				Token:      101,
			},
			{
				ID:         "o2",
				UserID:     "u1",
				Items:      []models.OrderItem{{Item: menu[1], Quantity: 2}},
				TotalMinor: 1500,
				Status:     models.OrderCompleted,
				OrderDate:  instant("2023-10-20T13:00:00Z"),
				Token:      102,
			},
		},
		Fines: []models.Fine{
			{ID: "f1", UserID: "u1", AmountMinor: 500, Reason: "Late return: SICP", TransactionID: "lt1", Date: day("2023-10-18")},
		},
	}
}
