package model

// Taxonomy entries are plain vocabulary rows. Products link to flags and
// ingredients through join tables, variants reference dough types and sizes.

type Flag struct {
	ID    uint    `gorm:"primarykey" json:"id"`
	Key   string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"key"`
	Label *string `gorm:"type:varchar(200)" json:"label,omitempty"`
}

func (Flag) TableName() string {
	return "flags"
}

type Ingredient struct {
	ID    uint    `gorm:"primarykey" json:"id"`
	Key   string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"key"`
	Label *string `gorm:"type:varchar(200)" json:"label,omitempty"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

type DoughType struct {
	ID    uint    `gorm:"primarykey" json:"id"`
	Key   string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"key"`
	Label *string `gorm:"type:varchar(200)" json:"label,omitempty"`
}

func (DoughType) TableName() string {
	return "dough_types"
}

type SizeOption struct {
	ID    uint    `gorm:"primarykey" json:"id"`
	Key   string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"key"`
	Label *string `gorm:"type:varchar(200)" json:"label,omitempty"`
}

func (SizeOption) TableName() string {
	return "size_options"
}

// DisplayName returns the label when present, otherwise the key.
func DisplayName(key string, label *string) string {
	if label != nil && *label != "" {
		return *label
	}
	return key
}
