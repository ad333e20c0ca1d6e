package models

import (
	"time"
)

const EmployeeTable = "inv_employees"

// Employee 借用人；有借用记录时不能删除
type Employee struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName  string    `gorm:"size:120;not null" json:"firstName"`
	LastName   string    `gorm:"size:120;not null" json:"lastName"`
	Email      *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Department *string   `gorm:"size:120" json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Employee) TableName() string {
	return EmployeeTable
}
