package services

import (
	"math"

	"github.com/edstack/institute-api/model"
	"github.com/edstack/institute-api/utils/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InstituteService owns the invariant checks gating institute writes. Mutating
// operations take the transaction handle explicitly; the caller decides the
// transaction boundary and every read/write inside it uses that handle.
type InstituteService struct {
	db *gorm.DB
}

// NewInstituteService creates a new institute service
func NewInstituteService(db *gorm.DB) *InstituteService {
	return &InstituteService{db: db}
}

// CreateInstituteRequest is the payload for creating an institute
type CreateInstituteRequest struct {
	Name          string   `json:"name" validate:"required,min=3,max=100"`
	Code          string   `json:"code" validate:"required,min=2,max=100"`
	Type          string   `json:"type" validate:"required,oneof=school college university training_center other"`
	Address       string   `json:"address" validate:"required,max=255"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
	Phone         *string  `json:"phone" validate:"omitempty,max=50"`
	Email         string   `json:"email" validate:"required,email,max=100"`
	Website       *string  `json:"website" validate:"omitempty,url,max=255"`
	Description   *string  `json:"description" validate:"omitempty"`
	ContactPerson *string  `json:"contactPerson" validate:"omitempty,max=50"`
	Timezone      *string  `json:"timezone" validate:"omitempty,max=100"`
	Currency      *string  `json:"currency" validate:"omitempty,max=50"`
}

// UpdateInstituteRequest is the payload for a partial institute update.
// Nil fields are left untouched.
type UpdateInstituteRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=3,max=100"`
	Code          *string  `json:"code" validate:"omitempty,min=2,max=100"`
	Type          *string  `json:"type" validate:"omitempty,oneof=school college university training_center other"`
	Address       *string  `json:"address" validate:"omitempty,max=255"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
	Phone         *string  `json:"phone" validate:"omitempty,max=50"`
	Email         *string  `json:"email" validate:"omitempty,email,max=100"`
	Website       *string  `json:"website" validate:"omitempty,url,max=255"`
	Description   *string  `json:"description" validate:"omitempty"`
	ContactPerson *string  `json:"contactPerson" validate:"omitempty,max=50"`
	Timezone      *string  `json:"timezone" validate:"omitempty,max=100"`
	Currency      *string  `json:"currency" validate:"omitempty,max=50"`
	IsActive      *bool    `json:"isActive" validate:"omitempty"`
}

// InstituteFilters narrows the listing query
type InstituteFilters struct {
	Type     string
	IsActive *bool
	Search   string
}

// Pagination describes the requested page and ordering
type Pagination struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // "ASC" or "DESC"
}

// InstituteList is one page of institutes plus paging metadata
type InstituteList struct {
	Data       []model.Institute `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// sortableColumns whitelists the fields the listing can be ordered by
var sortableColumns = map[string]string{
	"name":      "institute_name",
	"code":      "institute_code",
	"type":      "institute_type",
	"email":     "email_address",
	"isActive":  "is_active",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Create inserts a new institute after probing the code and email uniqueness
// invariants. The code probe runs first; the first violation found wins and
// the other is not evaluated. Both probes and the insert go through tx, so
// under the datastore's isolation level they are atomic with respect to
// concurrent writers; the unique indexes are the authoritative backstop for
// races the probes cannot see.
func (s *InstituteService) Create(tx *gorm.DB, req CreateInstituteRequest, actorID uuid.UUID) (*model.Institute, error) {
	existingByCode, err := s.findByCode(tx, req.Code)
	if err != nil {
		return nil, err
	}
	if existingByCode != nil {
		return nil, apperror.NewValidationError("Institute code already exists")
	}

	existingByEmail, err := s.findByEmail(tx, req.Email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, apperror.NewValidationError("Institute email already exists")
	}

	institute := model.Institute{
		Name:          req.Name,
		Code:          req.Code,
		Type:          model.InstituteType(req.Type),
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Phone:         req.Phone,
		Email:         req.Email,
		Website:       req.Website,
		Description:   req.Description,
		ContactPerson: req.ContactPerson,
		Timezone:      req.Timezone,
		Currency:      req.Currency,
		IsActive:      true,
		CreatedBy:     &actorID,
		UpdatedBy:     &actorID,
	}

	if err := tx.Create(&institute).Error; err != nil {
		return nil, err
	}

	return &institute, nil
}

// FindByID returns the institute or a NotFound error. Soft-deleted
// (deactivated) institutes are still returned.
func (s *InstituteService) FindByID(id uuid.UUID) (*model.Institute, error) {
	return s.findByID(s.db, id)
}

func (s *InstituteService) findByID(db *gorm.DB, id uuid.UUID) (*model.Institute, error) {
	var institute model.Institute
	if err := db.First(&institute, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NewNotFoundError("Institute")
		}
		return nil, apperror.NewDatabaseError("Failed to fetch institute")
	}
	return &institute, nil
}

// findByCode returns the matching institute or nil when absent
func (s *InstituteService) findByCode(db *gorm.DB, code string) (*model.Institute, error) {
	var institute model.Institute
	if err := db.First(&institute, "institute_code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("Failed to fetch institute by code")
	}
	return &institute, nil
}

// findByEmail returns the matching institute or nil when absent
func (s *InstituteService) findByEmail(db *gorm.DB, email string) (*model.Institute, error) {
	var institute model.Institute
	if err := db.First(&institute, "email_address = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("Failed to fetch institute by email")
	}
	return &institute, nil
}

// FindAll returns a filtered, paginated page of institutes. Total and
// totalPages are computed post-filter, pre-pagination.
func (s *InstituteService) FindAll(filters InstituteFilters, pagination Pagination) (*InstituteList, error) {
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.Limit < 1 {
		pagination.Limit = 10
	}

	query := s.db.Model(&model.Institute{})

	if filters.Type != "" {
		query = query.Where("institute_type = ?", filters.Type)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where(
			"institute_name ILIKE ? OR institute_code ILIKE ? OR email_address ILIKE ?",
			search, search, search,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.NewDatabaseError("Failed to fetch institutes")
	}

	if column, ok := sortableColumns[pagination.SortBy]; ok {
		direction := "DESC"
		if pagination.SortOrder == "ASC" {
			direction = "ASC"
		}
		query = query.Order(column + " " + direction)
	}

	offset := (pagination.Page - 1) * pagination.Limit

	institutes := []model.Institute{}
	if err := query.Limit(pagination.Limit).Offset(offset).Find(&institutes).Error; err != nil {
		return nil, apperror.NewDatabaseError("Failed to fetch institutes")
	}

	return &InstituteList{
		Data:       institutes,
		Total:      total,
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(pagination.Limit))),
	}, nil
}

// Update merges the non-nil fields of req onto the stored institute. When the
// update changes email or code, the corresponding uniqueness probe runs again
// before anything is written.
func (s *InstituteService) Update(tx *gorm.DB, id uuid.UUID, req UpdateInstituteRequest, actorID uuid.UUID) (*model.Institute, error) {
	institute, err := s.findByID(tx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != institute.Email {
		existingByEmail, err := s.findByEmail(tx, *req.Email)
		if err != nil {
			return nil, err
		}
		if existingByEmail != nil {
			return nil, apperror.NewValidationError("Institute email already exists")
		}
	}

	if req.Code != nil && *req.Code != institute.Code {
		existingByCode, err := s.findByCode(tx, *req.Code)
		if err != nil {
			return nil, err
		}
		if existingByCode != nil {
			return nil, apperror.NewValidationError("Institute code already exists")
		}
	}

	if req.Name != nil {
		institute.Name = *req.Name
	}
	if req.Code != nil {
		institute.Code = *req.Code
	}
	if req.Type != nil {
		institute.Type = model.InstituteType(*req.Type)
	}
	if req.Address != nil {
		institute.Address = *req.Address
	}
	if req.Latitude != nil {
		institute.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		institute.Longitude = req.Longitude
	}
	if req.Phone != nil {
		institute.Phone = req.Phone
	}
	if req.Email != nil {
		institute.Email = *req.Email
	}
	if req.Website != nil {
		institute.Website = req.Website
	}
	if req.Description != nil {
		institute.Description = req.Description
	}
	if req.ContactPerson != nil {
		institute.ContactPerson = req.ContactPerson
	}
	if req.Timezone != nil {
		institute.Timezone = req.Timezone
	}
	if req.Currency != nil {
		institute.Currency = req.Currency
	}
	if req.IsActive != nil {
		institute.IsActive = *req.IsActive
	}
	institute.UpdatedBy = &actorID

	if err := tx.Save(institute).Error; err != nil {
		return nil, err
	}

	return institute, nil
}

// Delete physically removes the institute row
func (s *InstituteService) Delete(tx *gorm.DB, id uuid.UUID) (bool, error) {
	institute, err := s.findByID(tx, id)
	if err != nil {
		return false, err
	}

	if err := tx.Delete(institute).Error; err != nil {
		return false, err
	}

	return true, nil
}

// SoftDelete deactivates the institute without removing the row. The row
// keeps blocking reuse of its name, code and email.
func (s *InstituteService) SoftDelete(tx *gorm.DB, id uuid.UUID, actorID uuid.UUID) (*model.Institute, error) {
	institute, err := s.findByID(tx, id)
	if err != nil {
		return nil, err
	}

	institute.IsActive = false
	institute.UpdatedBy = &actorID

	if err := tx.Save(institute).Error; err != nil {
		return nil, err
	}

	return institute, nil
}
