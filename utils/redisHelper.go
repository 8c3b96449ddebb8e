package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* Redis */

// store instance, obj should be a pointer
func StoreRedis[T any](obj any, id any) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

// store a per-tenant list
func StoreRedisList[T any](obj any, crouId string) error {
	var key string
	if crouId == "" {
		key = GetTypeName[T]() + "List"
	} else {
		key = GetTypeName[T]() + "List:" + crouId
	}
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

// get from redis
// returns nil if does not exist
func RetrieveRedis[T any](id any) (*T, error) {
	var result *T
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// retrieve a list.
// crouId can be empty
func RetrieveRedisList[T any](crouId string) ([]*T, error) {
	var key string
	if crouId == "" {
		key = GetTypeName[T]() + "List"
	} else {
		key = GetTypeName[T]() + "List:" + crouId
	}

	var result []*T
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// clear list, TypeList:$crou_id
// crouId can be empty
func RemoveRedisList[T any](crouId string) error {
	key := GetTypeName[T]() + "List"
	if crouId != "" {
		key += ":" + crouId
	}
	return config.RemoveRedisKey(key)
}

func RemoveRedisInstance[T any](id any) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}
