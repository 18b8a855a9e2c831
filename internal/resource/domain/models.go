package domain

import (
	"time"

	"github.com/harborline/shopd/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// Resource is one inventory item. Amount is units in stock and never
// goes negative at rest; Version backs the compare-and-swap writes that
// keep concurrent purchases from double-selling.
type Resource struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	Type        string          `gorm:"type:text;not null;index" json:"type"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Amount      int64           `gorm:"not null;default:0" json:"amount"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Version     int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Resource) TableName() string { return "resources" }

// TotalPrice is the stock valuation of this item.
func (r Resource) TotalPrice() decimal.Decimal {
	return r.Price.Mul(decimal.NewFromInt(r.Amount))
}

// CreateRequest carries fields for an administrative create.
type CreateRequest struct {
	Name        string
	Type        string
	Description *string
	Amount      int64
	Price       decimal.Decimal
}

// UpdateRequest carries a partial update; nil fields are left untouched.
type UpdateRequest struct {
	ID          string
	Name        *string
	Type        *string
	Description *string
	Amount      *int64
	Price       *decimal.Decimal
}

// ListRequest queries the paginated inventory listing. Latest bypasses
// the cache and reads straight from the store.
type ListRequest struct {
	Search string
	Page   int
	Limit  int
	Latest bool
}

// ListResponse is the (cacheable) listing result.
type ListResponse struct {
	Items []Resource `json:"items"`
	pagination.PageInfo
}
