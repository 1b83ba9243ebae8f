package models

// OrderIDSequence is the single-row counter behind local order id allocation.
// Incrementing it takes a row lock, so concurrent creators serialize on it.
type OrderIDSequence struct {
	ID        int   `gorm:"column:id;primaryKey"`
	NextValue int64 `gorm:"column:next_value;not null"`
}

// TableName keeps the singular, purpose-named table.
func (OrderIDSequence) TableName() string {
	return "order_id_seq"
}
