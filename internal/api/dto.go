package api

import (
	"time"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/services/query"
	"github.com/fastprodman/campushub/pkg/money"
)

type topUpRequest struct {
	Amount string `json:"amount"`
}

type orderLineRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type placeOrderRequest struct {
	Items []orderLineRequest `json:"items"`
}

type studyGuideRequest struct {
	Text string `json:"text"`
}

type walletResponse struct {
	UserID  string `json:"userId"`
	Balance string `json:"balance"`
}

type transactionResponse struct {
	ID          string    `json:"id"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

type fineResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Amount        string    `json:"amount"`
	Reason        string    `json:"reason"`
	TransactionID string    `json:"transactionId,omitempty"`
	IsPaid        bool      `json:"isPaid"`
	Date          time.Time `json:"date"`
}

type menuItemResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    string  `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Rating   float64 `json:"rating"`
}

type orderItemResponse struct {
	Item     menuItemResponse `json:"item"`
	Quantity int              `json:"quantity"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId"`
	Items         []orderItemResponse `json:"items"`
	Total         string              `json:"total"`
	Status        string              `json:"status"`
	OrderDate     time.Time           `json:"orderDate"`
	Token         int                 `json:"token"`
	PickupCodeURL string              `json:"pickupCodeUrl"`
}

type issuedBookResponse struct {
	Book        models.Book               `json:"book"`
	Transaction models.LibraryTransaction `json:"transaction"`
}

type dashboardResponse struct {
	Profile            models.User           `json:"profile"`
	Wallet             *walletResponse       `json:"wallet"`
	IssuedBooks        []issuedBookResponse  `json:"issuedBooks"`
	OverdueBooks       []issuedBookResponse  `json:"overdueBooks"`
	ActiveOrders       []orderResponse       `json:"activeOrders"`
	UnpaidFines        []fineResponse        `json:"unpaidFines"`
	UnpaidFinesTotal   string                `json:"unpaidFinesTotal"`
	RecentTransactions []transactionResponse `json:"recentTransactions"`
}

type categorySalesResponse struct {
	Category string `json:"category"`
	Revenue  string `json:"revenue"`
}

type dayActivityResponse struct {
	Day    string `json:"day"`
	Issued int    `json:"issued"`
}

type adminStatsResponse struct {
	TotalStudents    int                     `json:"totalStudents"`
	OpenIssues       int                     `json:"openIssues"`
	CanteenRevenue   string                  `json:"canteenRevenue"`
	OutstandingFines string                  `json:"outstandingFines"`
	SalesByCategory  []categorySalesResponse `json:"salesByCategory"`
	LibraryActivity  []dayActivityResponse   `json:"libraryActivity"`
}

func toWallet(w models.Wallet) walletResponse {
	return walletResponse{UserID: w.UserID, Balance: money.FormatCents(w.BalanceMinor)}
}

func toTransactions(list []models.WalletTransaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, transactionResponse{
			ID:          t.ID,
			Amount:      money.FormatCents(t.AmountMinor),
			Type:        string(t.Type),
			Description: t.Description,
			Date:        t.Date,
		})
	}

	return out
}

func toFine(f models.Fine) fineResponse {
	return fineResponse{
		ID:            f.ID,
		UserID:        f.UserID,
		Amount:        money.FormatCents(f.AmountMinor),
		Reason:        f.Reason,
		TransactionID: f.TransactionID,
		IsPaid:        f.IsPaid,
		Date:          f.Date,
	}
}

func toFines(list []models.Fine) []fineResponse {
	out := make([]fineResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFine(f))
	}

	return out
}

func toMenuItem(it models.CanteenItem) menuItemResponse {
	return menuItemResponse{
		ID:       it.ID,
		Name:     it.Name,
		Category: it.Category,
		Price:    money.FormatCents(it.PriceMinor),
		ImageURL: it.ImageURL,
		Rating:   it.Rating,
	}
}

func toMenu(list []models.CanteenItem) []menuItemResponse {
	out := make([]menuItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, toMenuItem(it))
	}

	return out
}

func toOrder(o models.CanteenOrder) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, orderItemResponse{Item: toMenuItem(l.Item), Quantity: l.Quantity})
	}

	return orderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         items,
		Total:         money.FormatCents(o.TotalMinor),
		Status:        string(o.Status),
		OrderDate:     o.OrderDate,
		Token:         o.Token,
		PickupCodeURL: query.PickupCodeURL(o),
	}
}

func toOrders(list []models.CanteenOrder) []orderResponse {
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrder(o))
	}

	return out
}

func toIssuedBooks(list []query.IssuedBook) []issuedBookResponse {
	out := make([]issuedBookResponse, 0, len(list))
	for _, ib := range list {
		out = append(out, issuedBookResponse{Book: ib.Book, Transaction: ib.Transaction})
	}

	return out
}

func toDashboard(d query.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Profile:            d.Profile,
		IssuedBooks:        toIssuedBooks(d.IssuedBooks),
		OverdueBooks:       toIssuedBooks(d.OverdueBooks),
		ActiveOrders:       toOrders(d.ActiveOrders),
		UnpaidFines:        toFines(d.UnpaidFines),
		UnpaidFinesTotal:   money.FormatCents(d.UnpaidFinesMinor),
		RecentTransactions: toTransactions(d.RecentTransactions),
	}

	if d.Wallet != nil {
		w := toWallet(*d.Wallet)
		resp.Wallet = &w
	}

	return resp
}

func toAdminStats(s query.AdminStats, sales []query.CategorySales, activity []query.DayActivity) adminStatsResponse {
	resp := adminStatsResponse{
		TotalStudents:    s.TotalStudents,
		OpenIssues:       s.OpenIssues,
		CanteenRevenue:   money.FormatCents(s.CanteenRevenueMinor),
		OutstandingFines: money.FormatCents(s.OutstandingFinesMinor),
		SalesByCategory:  make([]categorySalesResponse, 0, len(sales)),
		LibraryActivity:  make([]dayActivityResponse, 0, len(activity)),
	}

	for _, c := range sales {
		resp.SalesByCategory = append(resp.SalesByCategory, categorySalesResponse{
			Category: c.Category,
			Revenue:  money.FormatCents(c.RevenueMinor),
		})
	}

	for _, d := range activity {
		resp.LibraryActivity = append(resp.LibraryActivity, dayActivityResponse{
			Day:    d.Day.Format(time.DateOnly),
			Issued: d.Issued,
		})
	}

	return resp
}
