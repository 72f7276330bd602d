package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"aif/entity"
	"aif/pkg/errutil"
	"aif/pkg/goutil"
	"aif/pkg/validator"
	"aif/repo"
)

type UnsubscribeHandler interface {
	AddUnsubscribe(ctx context.Context, req *AddUnsubscribeRequest, res *AddUnsubscribeResponse) error
	GetUnsubscribes(ctx context.Context, req *GetUnsubscribesRequest, res *GetUnsubscribesResponse) error
}

type unsubscribeHandler struct {
	unsubscribeRepo repo.UnsubscribeRepo
}

func NewUnsubscribeHandler(unsubscribeRepo repo.UnsubscribeRepo) UnsubscribeHandler {
	return &unsubscribeHandler{unsubscribeRepo: unsubscribeRepo}
}

type AddUnsubscribeRequest struct {
	ContextInfo

	Email *string `json:"email,omitempty"`
}

func (r *AddUnsubscribeRequest) GetEmail() string {
	if r != nil && r.Email != nil {
		return *r.Email
	}
	return ""
}

type AddUnsubscribeResponse struct {
	Unsubscribe *entity.Unsubscribe `json:"unsubscribe,omitempty"`
}

var addUnsubscribeValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator(false),
	"email":       EmailValidator(false),
})

func (h *unsubscribeHandler) AddUnsubscribe(ctx context.Context, req *AddUnsubscribeRequest, res *AddUnsubscribeResponse) error {
	if err := addUnsubscribeValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	unsubscribe := &entity.Unsubscribe{
		Email:      goutil.String(goutil.NormalizeEmail(req.GetEmail())),
		CreateTime: goutil.Uint64(uint64(time.Now().Unix())),
	}

	id, err := h.unsubscribeRepo.Create(ctx, unsubscribe)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("create unsubscribe failed: %v", err)
		return err
	}
	unsubscribe.ID = goutil.Uint64(id)

	res.Unsubscribe = unsubscribe

	return nil
}

type GetUnsubscribesRequest struct {
	ContextInfo

	Page  *uint32 `schema:"page,omitempty"`
	Limit *uint32 `schema:"limit,omitempty"`
}

type GetUnsubscribesResponse struct {
	Unsubscribes []*entity.Unsubscribe `json:"unsubscribes,omitempty"`
	Pagination   *entity.Pagination    `json:"pagination,omitempty"`
}

func (h *unsubscribeHandler) GetUnsubscribes(ctx context.Context, req *GetUnsubscribesRequest, res *GetUnsubscribesResponse) error {
	limit := req.Limit
	if limit == nil {
		limit = goutil.Uint32(entity.DefaultPageLimit)
	}

	unsubscribes, pagination, err := h.unsubscribeRepo.GetMany(ctx, &repo.UnsubscribeFilter{
		Pagination: &repo.Pagination{
			Page:  req.Page,
			Limit: limit,
		},
	})
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get unsubscribes failed: %v", err)
		return err
	}

	res.Unsubscribes = unsubscribes
	res.Pagination = &entity.Pagination{
		Page:    pagination.Page,
		Limit:   pagination.Limit,
		HasNext: pagination.HasNext,
		Total:   pagination.Total,
	}

	return nil
}
