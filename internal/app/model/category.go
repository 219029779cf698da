package model

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ReservedCategorySlug is what clients send to mean "every category".
const ReservedCategorySlug = "toate"

var ErrReservedCategorySlug = errors.New("category slug is reserved")

type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Slug        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	if c.Slug == ReservedCategorySlug {
		return ErrReservedCategorySlug
	}
	return nil
}
