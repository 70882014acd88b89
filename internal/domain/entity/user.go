package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Permission names checked by the HTTP layer.
const (
	PermSalesCreate     = "sales.create"
	PermSalesView       = "sales.view"
	PermStockManage     = "stock.manage"
	PermStockView       = "stock.view"
	PermCatalogManage   = "catalog.manage"
	PermPartiesManage   = "parties.manage"
	PermReportsView     = "reports.view"
	PermReportsMaintain = "reports.maintain"
)

var rolePermissions = map[enum.Role][]string{
	enum.RoleAdmin: {
		PermSalesCreate, PermSalesView, PermStockManage, PermStockView,
		PermCatalogManage, PermPartiesManage, PermReportsView, PermReportsMaintain,
	},
	enum.RoleFinance: {
		PermSalesCreate, PermSalesView, PermStockManage, PermStockView, PermPartiesManage, PermReportsView,
	},
	enum.RoleReporter: {
		PermSalesView, PermStockView, PermReportsView,
	},
}

// User represents a staff account
type User struct {
	ID        uuid.UUID      `gorm:"size:36;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      enum.Role      `gorm:"size:20;not null;default:'reporter'" json:"role"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasPermission checks if the user's role grants a permission
func (u *User) HasPermission(permission string) bool {
	for _, p := range rolePermissions[u.Role] {
		if p == permission {
			return true
		}
	}
	return false
}

// GetPermissions returns all permission names for the user's role
func (u *User) GetPermissions() []string {
	return append([]string(nil), rolePermissions[u.Role]...)
}
