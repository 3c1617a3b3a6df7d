package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is the account owning addons and invoices.
type Customer struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	FirstName   string       `gorm:"not null;default:''" json:"first_name"`
	LastName    string       `gorm:"not null;default:''" json:"last_name"`
	CompanyName string       `gorm:"not null;default:''" json:"company_name"`
	Email       string       `gorm:"not null;default:''" json:"email"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "clients" }

// DisplayName prefers the person's name and falls back to the company.
func (c Customer) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(c.CompanyName)
}
