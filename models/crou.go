package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

// Crou is a tenant: one regional center, or the single ministry record.
type Crou struct {
	ID         uuid.UUID   `gorm:"type:char(36);primary_key" json:"id"`
	Name       string      `gorm:"size:255;not null" json:"name" binding:"required"`
	Code       string      `gorm:"size:20;uniqueIndex;not null" json:"code" binding:"required"`
	Region     string      `gorm:"size:100" json:"region"`
	TenantType TenantType  `gorm:"type:enum('crou','ministere');default:'crou'" json:"tenant_type"`
	Level      TenantLevel `gorm:"type:enum('national','regional');default:'regional'" json:"level"`
	IsActive   *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCrou struct {
	Name       string      `json:"name" binding:"required"`
	Code       string      `json:"code" binding:"required"`
	Region     string      `json:"region"`
	TenantType TenantType  `json:"tenant_type"`
	Level      TenantLevel `json:"level"`
}

func CreateCrou(ctx context.Context, input *NewCrou) (*Crou, error) {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&Crou{}).Where("code = ?", input.Code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Validation("duplicate crou code")
	}

	tenantType := input.TenantType
	if tenantType == "" {
		tenantType = TenantTypeCrou
	}
	level := input.Level
	if level == "" {
		level = TenantLevelRegional
	}
	if tenantType == TenantTypeMinistere {
		level = TenantLevelNational
	}

	crou := Crou{
		ID:         uuid.New(),
		Name:       input.Name,
		Code:       input.Code,
		Region:     input.Region,
		TenantType: tenantType,
		Level:      level,
		IsActive:   utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&crou).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, utils.Validation("duplicate crou code")
		}
		return nil, err
	}

	// tenant list changed; drop the cached copy
	_ = utils.RemoveRedisList[Crou]("")

	return &crou, nil
}

func GetCrou(ctx context.Context, id string) (*Crou, error) {
	db := config.GetDB()
	var crou Crou
	err := db.WithContext(ctx).Where("id = ?", id).First(&crou).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &crou, nil
}

// ListActiveCrous returns every active tenant, redis-cached.
func ListActiveCrous(ctx context.Context) ([]*Crou, error) {
	if crous, err := utils.RetrieveRedisList[Crou](""); err == nil && crous != nil {
		return crous, nil
	}

	db := config.GetDB()
	var crous []*Crou
	if err := db.WithContext(ctx).Where("is_active = ?", true).Order("code").Find(&crous).Error; err != nil {
		return nil, err
	}
	_ = utils.StoreRedisList[Crou](crous, "")
	return crous, nil
}

// ActiveCrouIds is the accessible-tenant set handed to ministry contexts.
func ActiveCrouIds(ctx context.Context) ([]string, error) {
	crous, err := ListActiveCrous(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(crous))
	for _, c := range crous {
		ids = append(ids, c.ID.String())
	}
	return ids, nil
}

func UpdateCrou(ctx context.Context, id string, input *NewCrou) (*Crou, error) {
	db := config.GetDB()

	var crou Crou
	if err := db.WithContext(ctx).Where("id = ?", id).First(&crou).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	crou.Name = input.Name
	crou.Region = input.Region
	if input.Level != "" {
		crou.Level = input.Level
	}
	if err := db.WithContext(ctx).Save(&crou).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Crou]("")
	return &crou, nil
}
