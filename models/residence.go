package models

import (
	"context"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

type Residence struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CrouId    string    `gorm:"type:char(36);index;not null" json:"crou_id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Address   string    `gorm:"size:255" json:"address"`
	City      string    `gorm:"size:100" json:"city"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	Rooms     []*Room   `json:"rooms,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewResidence struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type Room struct {
	ID          int       `gorm:"primary_key" json:"id"`
	CrouId      string    `gorm:"type:char(36);index;not null" json:"crou_id"`
	ResidenceId int       `gorm:"index;not null" json:"residence_id" binding:"required"`
	Number      string    `gorm:"size:20;not null" json:"number" binding:"required"`
	Capacity    int       `gorm:"not null;default:1" json:"capacity"`
	Occupied    int       `gorm:"not null;default:0" json:"occupied"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRoom struct {
	ResidenceId int    `json:"residence_id" binding:"required"`
	Number      string `json:"number" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
}

func (obj Residence) GetId() int {
	return obj.ID
}

func (obj Room) GetId() int {
	return obj.ID
}

func CreateResidence(ctx context.Context, input *NewResidence) (*Residence, error) {
	crouId, ok := utils.GetCrouIdFromContext(ctx)
	if !ok || crouId == "" {
		return nil, utils.Validation("crou id is required")
	}

	if err := utils.ValidateUnique[Residence](ctx, crouId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	residence := Residence{
		CrouId:   crouId,
		Name:     input.Name,
		Address:  input.Address,
		City:     input.City,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&residence).Error; err != nil {
		return nil, err
	}

	RecordAudit(ctx, AuditActionCreate, "residences", residence.Name, nil, residence, true, "")
	return &residence, nil
}

func ListResidences(ctx context.Context) ([]*Residence, error) {
	db := config.GetDB()
	var residences []*Residence
	err := db.WithContext(ctx).
		Preload("Rooms").
		Order("name").
		Find(&residences).Error
	if err != nil {
		return nil, err
	}
	return residences, nil
}

func CreateRoom(ctx context.Context, input *NewRoom) (*Room, error) {
	crouId, ok := utils.GetCrouIdFromContext(ctx)
	if !ok || crouId == "" {
		return nil, utils.Validation("crou id is required")
	}

	if err := utils.ValidateResourceId[Residence](ctx, crouId, input.ResidenceId); err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	count, err := utils.ResourceCountWhere[Room](ctx, crouId, "residence_id = ? AND number = ?", input.ResidenceId, input.Number)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Validation("duplicate room number")
	}

	room := Room{
		CrouId:      crouId,
		ResidenceId: input.ResidenceId,
		Number:      input.Number,
		Capacity:    input.Capacity,
		IsActive:    utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&room).Error; err != nil {
		return nil, err
	}

	RecordAudit(ctx, AuditActionCreate, "rooms", room.Number, nil, room, true, "")
	return &room, nil
}
