package rdb

import "time"

// ProviderRecord is the RDB persistence model for domain Provider.
// Table name: providers
type ProviderRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	Name        string    `gorm:"type:text;not null;uniqueIndex"`
	Kind        string    `gorm:"type:text;not null"`
	Options     string    `gorm:"type:text"` // JSON encoded map[string]string
	Credentials string    `gorm:"type:text"` // JSON encoded map[string]string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (ProviderRecord) TableName() string { return "providers" }

// OperationRecord persistence model
type OperationRecord struct {
	ID        string    `gorm:"primaryKey;type:text;not null"`
	Provider  string    `gorm:"type:text;not null;index"`
	Action    string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:text;not null"`
	RetryOf   string    `gorm:"type:text"`
	Items     string    `gorm:"type:text"` // JSON encoded []model.OperationItem
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (OperationRecord) TableName() string { return "operations" }
