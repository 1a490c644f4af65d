package catalog

import (
	"strings"
	"time"

	"github.com/phoneshop/backend/internal/domain/shared"
)

// Brand is a product manufacturer shown as a storefront filter
type Brand struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug    string `gorm:"type:varchar(120);not null;uniqueIndex"`
	LogoURL string `gorm:"type:varchar(500)"`
}

func (Brand) TableName() string {
	return "brands"
}

// NewBrand creates a new brand
func NewBrand(name, logoURL string) (*Brand, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Brand name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Brand name cannot exceed 100 characters")
	}

	return &Brand{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              Slugify(name),
		LogoURL:           logoURL,
	}, nil
}

// Update updates the brand's information
func (b *Brand) Update(name, logoURL string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Brand name cannot be empty")
	}

	b.Name = name
	b.Slug = Slugify(name)
	b.LogoURL = logoURL
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}
