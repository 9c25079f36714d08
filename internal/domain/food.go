package domain

import "time"

// Food is a catalog entry. The order workflow reads it only to verify
// prices; it never mutates the catalog.
type Food struct {
	ID          uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:255;not null;index"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Image       string `json:"image,omitempty" gorm:"size:500"`
	Category    string `json:"category" gorm:"size:100;not null;index"`
	IsActive    bool   `json:"isActive" gorm:"not null;default:true"`
	SortOrder   int    `json:"sortOrder" gorm:"not null;default:0"`

	PortionSizes []FoodPortionSize `json:"portionSizes" gorm:"foreignKey:FoodID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// PriceFor returns the price for a named portion size.
func (f *Food) PriceFor(sizeName string) (Cents, bool) {
	for _, ps := range f.PortionSizes {
		if ps.SizeName == sizeName {
			return ps.Price, true
		}
	}
	return 0, false
}

type FoodPortionSize struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	FoodID    uint64 `json:"foodId" gorm:"not null;uniqueIndex:uniq_food_size"`
	SizeName  string `json:"sizeName" gorm:"size:255;not null;uniqueIndex:uniq_food_size"`
	Price     Cents  `json:"price" gorm:"not null"`
	SortOrder int    `json:"sortOrder" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
