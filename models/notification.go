package models

import (
	"context"
	"errors"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

type Notification struct {
	ID        int              `gorm:"primary_key" json:"id"`
	CrouId    string           `gorm:"type:char(36);index" json:"crou_id"`
	UserId    int              `gorm:"index;not null" json:"user_id"`
	Type      NotificationType `gorm:"size:20;not null" json:"type"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	Reference string           `gorm:"size:100" json:"reference"`
	IsRead    *bool            `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (obj Notification) GetId() int {
	return obj.ID
}

func CreateNotification(ctx context.Context, userId int, notifType NotificationType, title string, body string, reference string) (*Notification, error) {
	notification := Notification{
		UserId:    userId,
		Type:      notifType,
		Title:     title,
		Body:      body,
		Reference: reference,
		IsRead:    utils.NewFalse(),
	}
	if crouId, ok := utils.GetCrouIdFromContext(ctx); ok {
		notification.CrouId = crouId
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func ListNotifications(ctx context.Context, unreadOnly bool) ([]*Notification, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if unreadOnly {
		dbCtx = dbCtx.Where("is_read = ?", false)
	}
	var notifications []*Notification
	if err := dbCtx.Order("id DESC").Limit(100).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func MarkNotificationRead(ctx context.Context, id int) error {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}

	db := config.GetDB()
	result := db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userId).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
