package service

import (
	"errors"
	"fmt"
	"strings"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/apperr"

	"gorm.io/gorm"
)

type RegisterBusinessRequest struct {
	BusinessName  string `json:"business_name" validate:"required"`
	BusinessCatID uint   `json:"business_cat_id" validate:"required"`
}

type AddEmployeeRequest struct {
	Username   string `json:"username" validate:"required"`
	BusPosID   uint   `json:"bus_pos_id" validate:"required"`
	BusinessID uint   `json:"-"`
}

type BusinessService interface {
	RegisterBusiness(ownerID uint, req RegisterBusinessRequest, logCtx Entry) (*model.Business, error)
	GetBusiness(businessID uint) (*model.Business, error)
	ListMyBusinesses(userID uint) ([]model.Business, error)
	UpdateSettings(businessID uint, name, logoPath string, logCtx Entry) (*model.Business, error)
	ListCategories() ([]model.BusinessCategory, error)

	ListEmployees(businessID uint) ([]repository.EmployeeRow, error)
	AddEmployee(req AddEmployeeRequest, logCtx Entry) error
	UpdateEmployeePosition(businessID, userID, positionID uint, logCtx Entry) error
	RemoveEmployee(businessID, userID uint, logCtx Entry) error
}

type businessService struct {
	db         *gorm.DB
	businesses repository.BusinessRepository
	users      repository.UserRepository
	logs       LogService
	perms      PermissionService
}

func NewBusinessService(db *gorm.DB, businesses repository.BusinessRepository, users repository.UserRepository, logs LogService, perms PermissionService) BusinessService {
	return &businessService{db, businesses, users, logs, perms}
}

// businessCode derives the receipt prefix from the name: first letters of up
// to three words, padded with the owner id when too short.
func businessCode(name string, ownerID uint) string {
	var code strings.Builder
	for _, word := range strings.Fields(strings.ToUpper(name)) {
		if code.Len() >= 3 {
			break
		}
		r := rune(word[0])
		if r >= 'A' && r <= 'Z' {
			code.WriteRune(r)
		}
	}
	if code.Len() == 0 {
		code.WriteString("BIZ")
	}
	return fmt.Sprintf("%s%d", code.String(), ownerID)
}

// RegisterBusiness creates the business and the owner's membership at the
// Owner preset in one transaction.
func (s *businessService) RegisterBusiness(ownerID uint, req RegisterBusinessRequest, logCtx Entry) (*model.Business, error) {
	business := model.Business{
		BusinessName:  req.BusinessName,
		BusinessCatID: req.BusinessCatID,
		OwnerID:       ownerID,
		BusinessCode:  businessCode(req.BusinessName, ownerID),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.businesses.Create(tx, &business); err != nil {
			return err
		}
		member := model.BusinessUserPosition{
			UserID:     ownerID,
			BusinessID: business.ID,
			BusPosID:   model.OwnerPositionID,
		}
		return s.businesses.AddMember(tx, &member)
	})
	if err != nil {
		return nil, err
	}

	logCtx.BusinessID = business.ID
	logCtx.UserID = ownerID
	logCtx.ModuleID = model.ModuleBusiness
	logCtx.ActionID = model.ActionCreate
	logCtx.Table = "business_table"
	logCtx.RecordID = business.ID
	logCtx.NewData = business
	s.logs.Record(logCtx)

	s.perms.InvalidateUser(ownerID)
	return &business, nil
}

func (s *businessService) GetBusiness(businessID uint) (*model.Business, error) {
	return s.businesses.FindByID(businessID)
}

func (s *businessService) ListMyBusinesses(userID uint) ([]model.Business, error) {
	return s.businesses.FindByUser(userID)
}

func (s *businessService) UpdateSettings(businessID uint, name, logoPath string, logCtx Entry) (*model.Business, error) {
	before, err := s.businesses.FindByID(businessID)
	if err != nil {
		return nil, err
	}
	if err := s.businesses.UpdateSettings(businessID, name, logoPath); err != nil {
		return nil, err
	}
	after, err := s.businesses.FindByID(businessID)
	if err != nil {
		return nil, err
	}

	logCtx.BusinessID = businessID
	logCtx.ModuleID = model.ModuleBusiness
	logCtx.ActionID = model.ActionUpdate
	logCtx.Table = "business_table"
	logCtx.RecordID = businessID
	logCtx.OldData = before
	logCtx.NewData = after
	s.logs.Record(logCtx)
	return after, nil
}

func (s *businessService) ListCategories() ([]model.BusinessCategory, error) {
	return s.businesses.ListCategories()
}

func (s *businessService) ListEmployees(businessID uint) ([]repository.EmployeeRow, error) {
	return s.businesses.ListEmployees(businessID)
}

// AddEmployee looks the user up by username; the person must already have an
// account.
func (s *businessService) AddEmployee(req AddEmployeeRequest, logCtx Entry) error {
	user, err := s.users.FindByUsername(req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("no account with that username")
	}
	if err != nil {
		return err
	}
	member := model.BusinessUserPosition{
		UserID:     user.ID,
		BusinessID: req.BusinessID,
		BusPosID:   req.BusPosID,
	}
	if err := s.businesses.AddMember(nil, &member); err != nil {
		return err
	}

	logCtx.BusinessID = req.BusinessID
	logCtx.ModuleID = model.ModuleBusiness
	logCtx.ActionID = model.ActionCreate
	logCtx.Table = "business_user_position_table"
	logCtx.RecordID = member.ID
	logCtx.NewData = member
	s.logs.Record(logCtx)

	s.perms.InvalidateUser(user.ID)
	return nil
}

func (s *businessService) UpdateEmployeePosition(businessID, userID, positionID uint, logCtx Entry) error {
	if err := s.businesses.UpdateMemberPosition(userID, businessID, positionID); err != nil {
		return err
	}

	logCtx.BusinessID = businessID
	logCtx.ModuleID = model.ModuleBusiness
	logCtx.ActionID = model.ActionUpdate
	logCtx.Table = "business_user_position_table"
	logCtx.RecordID = userID
	logCtx.NewData = map[string]uint{"user_id": userID, "bus_pos_id": positionID}
	s.logs.Record(logCtx)

	s.perms.InvalidateUser(userID)
	return nil
}

func (s *businessService) RemoveEmployee(businessID, userID uint, logCtx Entry) error {
	business, err := s.businesses.FindByID(businessID)
	if err != nil {
		return err
	}
	if business.OwnerID == userID {
		return apperr.Conflict("the owner cannot be removed from the business")
	}
	if err := s.businesses.RemoveMember(userID, businessID); err != nil {
		return err
	}

	logCtx.BusinessID = businessID
	logCtx.ModuleID = model.ModuleBusiness
	logCtx.ActionID = model.ActionDelete
	logCtx.Table = "business_user_position_table"
	logCtx.RecordID = userID
	s.logs.Record(logCtx)

	s.perms.InvalidateUser(userID)
	return nil
}
