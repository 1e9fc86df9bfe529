package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InstituteType enumerates the supported institute categories
type InstituteType string

const (
	InstituteTypeSchool         InstituteType = "school"
	InstituteTypeCollege        InstituteType = "college"
	InstituteTypeUniversity     InstituteType = "university"
	InstituteTypeTrainingCenter InstituteType = "training_center"
	InstituteTypeOther          InstituteType = "other"
)

// Institute represents an educational institute. Deactivation (IsActive=false)
// is a logical delete: the row stays in place and keeps participating in the
// name/code/email uniqueness constraints.
type Institute struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string        `gorm:"column:institute_name;type:varchar(100);uniqueIndex;not null" json:"name"`
	Code          string        `gorm:"column:institute_code;type:varchar(100);uniqueIndex;not null" json:"code"`
	Type          InstituteType `gorm:"column:institute_type;type:varchar(100);not null" json:"type"`
	Address       string        `gorm:"type:varchar(255);not null" json:"address"`
	Latitude      *float64      `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude     *float64      `gorm:"type:decimal(11,8)" json:"longitude"`
	Phone         *string       `gorm:"column:phone_number;type:varchar(50)" json:"phone"`
	Email         string        `gorm:"column:email_address;type:varchar(100);uniqueIndex;not null" json:"email"`
	Website       *string       `gorm:"column:website_url;type:varchar(255)" json:"website"`
	Description   *string       `gorm:"type:text" json:"description"`
	ContactPerson *string       `gorm:"column:contact_person;type:varchar(50)" json:"contactPerson"`
	IsActive      bool          `gorm:"column:is_active;default:true" json:"isActive"`
	Timezone      *string       `gorm:"type:varchar(100)" json:"timezone"`
	Currency      *string       `gorm:"type:varchar(50)" json:"currency"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	CreatedBy     *uuid.UUID    `gorm:"column:created_by;type:uuid" json:"createdBy"`
	UpdatedBy     *uuid.UUID    `gorm:"column:updated_by;type:uuid" json:"updatedBy"`
}

// TableName specifies the table name for Institute
func (Institute) TableName() string {
	return "institutes"
}

// BeforeCreate assigns the UUID primary key
func (i *Institute) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
