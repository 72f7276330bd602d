package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"aif/entity"
	"aif/pkg/errutil"
	"aif/pkg/goutil"
)

var (
	ErrRecipientNotFound = errutil.NotFoundError(errors.New("recipient not found"))
)

type Recipient struct {
	ID            *uint64
	CampaignID    *uint64
	Email         *string
	UserID        *uint64
	TrackingToken *string
	SentStatus    *uint32
	SentAt        *uint64
	ErrorMessage  *string
	OpenTime      *uint64
	CreateTime    *uint64
}

func (m *Recipient) TableName() string {
	return "campaign_recipient_tab"
}

func (m *Recipient) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

type RecipientRepo interface {
	CreateMany(ctx context.Context, recipients []*entity.Recipient) error
	GetByTrackingToken(ctx context.Context, token string) (*entity.Recipient, error)
	GetManyByCampaignID(ctx context.Context, campaignID uint64) ([]*entity.Recipient, error)
	CountOpenedByCampaignID(ctx context.Context, campaignID uint64) (uint64, error)
	// MarkSent and MarkFailed only move a row out of pending, a terminal
	// status is never overwritten.
	MarkSent(ctx context.Context, id uint64, sentAt uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	// MarkOpened records the first open only.
	MarkOpened(ctx context.Context, id uint64, openTime uint64) (bool, error)
}

type recipientRepo struct {
	baseRepo BaseRepo
}

func NewRecipientRepo(_ context.Context, baseRepo BaseRepo) RecipientRepo {
	return &recipientRepo{baseRepo: baseRepo}
}

func (r *recipientRepo) CreateMany(ctx context.Context, recipients []*entity.Recipient) error {
	if len(recipients) == 0 {
		return nil
	}

	recipientModels := make([]*Recipient, 0, len(recipients))
	for _, recipient := range recipients {
		recipientModels = append(recipientModels, ToRecipientModel(recipient))
	}

	if err := r.baseRepo.CreateMany(ctx, new(Recipient), recipientModels); err != nil {
		return err
	}

	for i, recipientModel := range recipientModels {
		recipients[i].ID = recipientModel.ID
	}

	return nil
}

func (r *recipientRepo) GetByTrackingToken(ctx context.Context, token string) (*entity.Recipient, error) {
	recipient := new(Recipient)

	if err := r.baseRepo.Get(ctx, recipient, &Filter{
		Conditions: []*Condition{
			{
				Field: "tracking_token",
				Value: token,
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	return ToRecipient(recipient), nil
}

func (r *recipientRepo) GetManyByCampaignID(ctx context.Context, campaignID uint64) ([]*entity.Recipient, error) {
	res, _, err := r.baseRepo.GetMany(ctx, new(Recipient), &Filter{
		Conditions: []*Condition{
			{
				Field: "campaign_id",
				Value: campaignID,
				Op:    OpEq,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	recipients := make([]*entity.Recipient, 0, len(res))
	for _, m := range res {
		recipients = append(recipients, ToRecipient(m.(*Recipient)))
	}

	return recipients, nil
}

func (r *recipientRepo) CountOpenedByCampaignID(ctx context.Context, campaignID uint64) (uint64, error) {
	return r.baseRepo.Count(ctx, new(Recipient), &Filter{
		Conditions: []*Condition{
			{
				Field: "campaign_id",
				Value: campaignID,
				Op:    OpEq,
			},
			{
				Field: "open_time",
				Op:    OpIsNotNull,
			},
		},
	})
}

func (r *recipientRepo) MarkSent(ctx context.Context, id uint64, sentAt uint64) error {
	return r.markTerminal(ctx, id, &Recipient{
		SentStatus: goutil.Uint32(uint32(entity.SentStatusSent)),
		SentAt:     goutil.Uint64(sentAt),
	})
}

func (r *recipientRepo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return r.markTerminal(ctx, id, &Recipient{
		SentStatus:   goutil.Uint32(uint32(entity.SentStatusFailed)),
		ErrorMessage: goutil.String(errMsg),
	})
}

func (r *recipientRepo) markTerminal(ctx context.Context, id uint64, updates *Recipient) error {
	_, err := r.baseRepo.UpdateWhere(ctx, new(Recipient), updates, &Filter{
		Conditions: []*Condition{
			{
				Field:         "id",
				Value:         id,
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "sent_status",
				Value: uint32(entity.SentStatusPending),
				Op:    OpEq,
			},
		},
	})
	return err
}

func (r *recipientRepo) MarkOpened(ctx context.Context, id uint64, openTime uint64) (bool, error) {
	rowsAffected, err := r.baseRepo.UpdateWhere(ctx, new(Recipient), &Recipient{
		OpenTime: goutil.Uint64(openTime),
	}, &Filter{
		Conditions: []*Condition{
			{
				Field:         "id",
				Value:         id,
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "open_time",
				Op:    OpIsNull,
			},
		},
	})
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func ToRecipient(recipient *Recipient) *entity.Recipient {
	var sentStatus uint32
	if recipient.SentStatus != nil {
		sentStatus = *recipient.SentStatus
	}

	return &entity.Recipient{
		ID:            recipient.ID,
		CampaignID:    recipient.CampaignID,
		Email:         recipient.Email,
		UserID:        recipient.UserID,
		TrackingToken: recipient.TrackingToken,
		SentStatus:    entity.SentStatus(sentStatus),
		SentAt:        recipient.SentAt,
		ErrorMessage:  recipient.ErrorMessage,
		OpenTime:      recipient.OpenTime,
		CreateTime:    recipient.CreateTime,
	}
}

func ToRecipientModel(recipient *entity.Recipient) *Recipient {
	return &Recipient{
		ID:            recipient.ID,
		CampaignID:    recipient.CampaignID,
		Email:         recipient.Email,
		UserID:        recipient.UserID,
		TrackingToken: recipient.TrackingToken,
		SentStatus:    goutil.Uint32(uint32(recipient.SentStatus)),
		SentAt:        recipient.SentAt,
		ErrorMessage:  recipient.ErrorMessage,
		OpenTime:      recipient.OpenTime,
		CreateTime:    recipient.CreateTime,
	}
}
