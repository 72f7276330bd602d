package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"aif/entity"
	"aif/pkg/goutil"
)

type Unsubscribe struct {
	ID         *uint64
	Email      *string
	CreateTime *uint64
}

func (m *Unsubscribe) TableName() string {
	return "unsubscribe_tab"
}

func (m *Unsubscribe) GetEmail() string {
	if m != nil && m.Email != nil {
		return *m.Email
	}
	return ""
}

type UnsubscribeFilter struct {
	Pagination *Pagination
}

type UnsubscribeRepo interface {
	Create(ctx context.Context, unsubscribe *entity.Unsubscribe) (uint64, error)
	// GetEmailSet returns all unsubscribed addresses, normalized, as set
	// membership for the resolver's filter.
	GetEmailSet(ctx context.Context) (map[string]struct{}, error)
	GetMany(ctx context.Context, f *UnsubscribeFilter) ([]*entity.Unsubscribe, *Pagination, error)
}

type unsubscribeRepo struct {
	baseRepo BaseRepo
}

func NewUnsubscribeRepo(_ context.Context, baseRepo BaseRepo) UnsubscribeRepo {
	return &unsubscribeRepo{baseRepo: baseRepo}
}

func (r *unsubscribeRepo) Create(ctx context.Context, unsubscribe *entity.Unsubscribe) (uint64, error) {
	unsubscribeModel := &Unsubscribe{
		Email:      goutil.String(goutil.NormalizeEmail(unsubscribe.GetEmail())),
		CreateTime: unsubscribe.CreateTime,
	}

	if err := r.baseRepo.Create(ctx, unsubscribeModel); err != nil {
		return 0, err
	}

	return unsubscribeModel.GetID(), nil
}

func (m *Unsubscribe) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (r *unsubscribeRepo) GetEmailSet(ctx context.Context) (map[string]struct{}, error) {
	res, _, err := r.baseRepo.GetMany(ctx, new(Unsubscribe), &Filter{})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	set := make(map[string]struct{}, len(res))
	for _, m := range res {
		set[goutil.NormalizeEmail(m.(*Unsubscribe).GetEmail())] = struct{}{}
	}

	return set, nil
}

func (r *unsubscribeRepo) GetMany(ctx context.Context, f *UnsubscribeFilter) ([]*entity.Unsubscribe, *Pagination, error) {
	res, pagination, err := r.baseRepo.GetMany(ctx, new(Unsubscribe), &Filter{
		Pagination: f.Pagination,
	})
	if err != nil {
		return nil, nil, err
	}

	unsubscribes := make([]*entity.Unsubscribe, 0, len(res))
	for _, m := range res {
		unsubscribeModel := m.(*Unsubscribe)
		unsubscribes = append(unsubscribes, &entity.Unsubscribe{
			ID:         unsubscribeModel.ID,
			Email:      unsubscribeModel.Email,
			CreateTime: unsubscribeModel.CreateTime,
		})
	}

	return unsubscribes, pagination, nil
}
