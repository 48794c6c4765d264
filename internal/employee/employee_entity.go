package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the directory record lifecycle and balance rows hang off.
// Role mirrors the two authorization roles; there is no org hierarchy.
type Employee struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName string    `gorm:"type:varchar(150);not null"`
	Email    string    `gorm:"type:varchar(150);not null;uniqueIndex"`
	Role     string    `gorm:"type:varchar(20);not null;default:'employee'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Employee) TableName() string { return "employees" }
