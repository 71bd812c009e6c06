package domain

import "time"

// Backend-owned entities as this layer sees them. The commerce backend is
// the authority for every field here; these are read models carrying the
// JSON tags its payloads use.

type Product struct {
	MongoID     string   `json:"_id"`
	ProductID   string   `json:"productId"`
	Name        string   `json:"productName"`
	AltNames    []string `json:"altNames"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`      // labeled (pre-discount) price
	LastPrice   float64  `json:"lastPrices"` // current selling price
	Images      []string `json:"images"`
	Stock       int      `json:"stock"`
	Available   bool     `json:"isAvailable"`
	Category    string   `json:"category"`
	CreatedAt   string   `json:"createdAt"`
}

// Key returns the stable catalog identifier, falling back to the record id
// for older payloads that omit productId.
func (p Product) Key() string {
	if p.ProductID != "" {
		return p.ProductID
	}
	return p.MongoID
}

func (p Product) HasDiscount() bool { return p.Price > p.LastPrice }

type Category struct {
	MongoID     string `json:"_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type Ad struct {
	MongoID   string `json:"_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Link      string `json:"link"`
	Placement string `json:"category"` // "home" or a category slug
	Active    bool   `json:"isActive"`
}

// CartLine is the one entity this layer owns: {productId, qty>0}, keyed by
// productId, merged on add. Lives in the per-session local store until a
// quote is requested.
type CartLine struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

const (
	SenderUser  = "user"
	SenderAdmin = "admin"
	SenderAI    = "ai"
)

type Message struct {
	ID        string    `json:"_id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`

	// Provisional marks a locally-fabricated record awaiting its
	// authoritative counterpart. Never set on backend payloads.
	Provisional bool `json:"-"`
}

type Notification struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"productName"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	LastPrice float64 `json:"lastPrice"`
	Qty       int     `json:"qty"`
}

type Order struct {
	MongoID       string      `json:"_id"`
	OrderID       string      `json:"orderId"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"paymentMethod"` // "cod" | "card" | "payhere"
	TotalAmount   float64     `json:"totalAmount"`
	LabeledTotal  float64     `json:"labeledTotal"`
	CreatedAt     time.Time   `json:"createdAt"`
	Items         []OrderItem `json:"items"`
	Name          string      `json:"name"`
	Address       string      `json:"address"`
	Phone         string      `json:"phone"`
}

func (o Order) Ref() string {
	if o.OrderID != "" {
		return o.OrderID
	}
	return o.MongoID
}

// QuoteLine carries the authoritative per-line price and stock figure the
// cart UI checks before allowing increments.
type QuoteLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Qty       int     `json:"qty"`
	Price     float64 `json:"price"`
	LastPrice float64 `json:"lastPrice"`
	Stock     int     `json:"stock"`
}

type Quote struct {
	Items        []QuoteLine `json:"orderedItems"`
	Total        float64     `json:"total"`
	LabeledTotal float64     `json:"labeledTotal"`
	Discount     float64     `json:"discount"`
	Message      string      `json:"message"`
}

type User struct {
	MongoID   string `json:"_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"` // "user" | "admin"
	Phone     string `json:"phone"`
	Image     string `json:"image"`
}

func (u User) IsAdmin() bool { return u.Role == "admin" }

// OrderStats backs the admin dashboard cards.
type OrderStats struct {
	TotalOrders   int     `json:"totalOrders"`
	PendingOrders int     `json:"pendingOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalUsers    int     `json:"totalUsers"`
}
