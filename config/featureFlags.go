package config

import (
	"os"
	"strings"
)

const (
	AllocationLockNone  = "none"
	AllocationLockRedis = "redis"
)

// AllocationLockMode controls whether order commits serialise identifier allocation.
//
// "none" (default) keeps the plain MAX+1 allocation: two concurrent commits may compute the
// same POID/DeliveryID and one of them then fails with a unique violation.
// "redis" holds one redislock across the whole commit, from transaction start to commit/rollback.
//
// Set via env:
// - ALLOCATION_LOCK=redis
func AllocationLockMode() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOCATION_LOCK")))
	if v == AllocationLockRedis {
		return AllocationLockRedis
	}
	return AllocationLockNone
}
