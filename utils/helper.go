package utils

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/roufai-ne/crou-management-system-sub011/config"
)

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// TenantLock obtains a best-effort redis lock scoped to one tenant. The DB
// row lock in the allocation workflow stays the correctness mechanism; this
// only reduces in-request blocking when two cascades race on the same parent.
func TenantLock(ctx context.Context, crouId string, lockType string, moduleName string, functionName string) (*redislock.Lock, error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Avoid nil-pointer panics when Redis lock isn't initialized yet.
		return nil, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, crouId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for crouId", crouId, err)
		return nil, errors.New("could not obtain lock for crou")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for crouId", crouId, err)
		return nil, err
	}
	return lock, nil
}
