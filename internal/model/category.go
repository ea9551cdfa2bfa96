package model

// Category is a flat display grouping for catalog products, ordered by an
// explicit sort key. Download-only; the terminal never writes these.
type Category struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}
