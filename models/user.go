package models

import (
	"context"
	"errors"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CrouId    string    `gorm:"type:char(36);index" json:"crou_id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username" binding:"required"`
	Name      string    `gorm:"size:255" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"size:50;not null" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	CrouId   string   `json:"crou_id"`
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     UserRole `json:"role" binding:"required"`
}

func (u *User) IsMinistere() bool {
	return MinistryRoles[u.Role]
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Validation("duplicate username")
	}

	// every non-ministry user must belong to a tenant
	if !MinistryRoles[input.Role] {
		if input.CrouId == "" {
			return nil, utils.Validation("crou_id is required")
		}
		if _, err := GetCrou(ctx, input.CrouId); err != nil {
			return nil, utils.Validation("crou not found")
		}
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		CrouId:   input.CrouId,
		Username: input.Username,
		Name:     input.Name,
		Password: string(hashed),
		Role:     input.Role,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, utils.Validation("duplicate username")
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername checks the redis cache before the database.
func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if cached, err := utils.RetrieveRedis[User](username); err == nil && cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	var user User
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	_ = utils.StoreRedis[User](&user, username)
	return &user, nil
}

// GetUserById checks the redis cache before the database.
func GetUserById(ctx context.Context, id int) (*User, error) {
	if cached, err := utils.RetrieveRedis[User](id); err == nil && cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	_ = utils.StoreRedis[User](&user, id)
	return &user, nil
}
