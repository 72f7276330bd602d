package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

const adminCachePrefix = "admin_role"

type AdminRole struct {
	ID         *uint64
	UserID     *uint64
	Role       *string
	CreateTime *uint64
}

func (m *AdminRole) TableName() string {
	return "admin_role_tab"
}

type AdminRepo interface {
	IsAdmin(ctx context.Context, userID uint64) (bool, error)
}

type adminRepo struct {
	baseRepo  BaseRepo
	baseCache BaseCache
}

func NewAdminRepo(_ context.Context, baseRepo BaseRepo, baseCache BaseCache) AdminRepo {
	return &adminRepo{
		baseRepo:  baseRepo,
		baseCache: baseCache,
	}
}

// IsAdmin is hit on every admin request, so positive and negative lookups
// are both cached briefly.
func (r *adminRepo) IsAdmin(ctx context.Context, userID uint64) (bool, error) {
	if v, ok := r.baseCache.Get(ctx, adminCachePrefix, userID); ok {
		return v.(bool), nil
	}

	adminRole := new(AdminRole)
	err := r.baseRepo.Get(ctx, adminRole, &Filter{
		Conditions: []*Condition{
			{
				Field: "user_id",
				Value: userID,
				Op:    OpEq,
			},
		},
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.baseCache.Set(ctx, adminCachePrefix, userID, false)
			return false, nil
		}
		return false, err
	}

	r.baseCache.Set(ctx, adminCachePrefix, userID, true)
	return true, nil
}
