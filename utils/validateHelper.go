package utils

import (
	"context"
	"reflect"

	"github.com/roufai-ne/crou-management-system-sub011/config"
)

// check if id exists, using ctx's crou_id in WHERE, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, crouId string, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, crouId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, crouId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, crouId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, crouId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return Validation("duplicate " + column)
	}
	return nil
}

// count records, using WHERE crou_id = ? AND $condition
// crou_id can be blank for ministry users
func ResourceCountWhere[T any](ctx context.Context, crouId string, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if crouId != "" {
		dbCtx.Where("crou_id = ?", crouId)
	}
	dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
