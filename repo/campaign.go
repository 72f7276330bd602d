package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"aif/entity"
	"aif/pkg/errutil"
	"aif/pkg/goutil"
)

var (
	ErrCampaignNotFound = errutil.NotFoundError(errors.New("campaign not found"))
)

type Campaign struct {
	ID              *uint64
	Subject         *string
	HtmlContent     *string
	TextContent     *string
	RecipientType   *uint32
	AdhocEmails     *string
	ReplyTo         *string
	SentBy          *uint64
	TotalRecipients *uint64
	TotalSent       *uint64
	TotalFailed     *uint64
	TotalOpened     *uint64
	Status          *uint32
	SentAt          *uint64
	ScheduledFor    *uint64
	CreateTime      *uint64
	UpdateTime      *uint64
}

func (m *Campaign) TableName() string {
	return "campaign_tab"
}

func (m *Campaign) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *Campaign) GetAdhocEmails() string {
	if m != nil && m.AdhocEmails != nil {
		return *m.AdhocEmails
	}
	return ""
}

type CampaignFilter struct {
	Pagination *Pagination
}

type CampaignRepo interface {
	Create(ctx context.Context, campaign *entity.Campaign) (uint64, error)
	Update(ctx context.Context, campaign *entity.Campaign) error
	GetByID(ctx context.Context, id uint64) (*entity.Campaign, error)
	GetMany(ctx context.Context, f *CampaignFilter) ([]*entity.Campaign, *Pagination, error)
	GetDueScheduled(ctx context.Context, now uint64) ([]*entity.Campaign, error)
	// Claim flips exactly one row from scheduled to sending. A false return
	// means another caller got there first and the campaign must be skipped.
	Claim(ctx context.Context, id uint64) (bool, error)
}

type campaignRepo struct {
	baseRepo BaseRepo
}

func NewCampaignRepo(_ context.Context, baseRepo BaseRepo) CampaignRepo {
	return &campaignRepo{baseRepo: baseRepo}
}

func (r *campaignRepo) Create(ctx context.Context, campaign *entity.Campaign) (uint64, error) {
	campaignModel, err := ToCampaignModel(campaign)
	if err != nil {
		return 0, err
	}

	if err := r.baseRepo.Create(ctx, campaignModel); err != nil {
		return 0, err
	}

	campaign.ID = campaignModel.ID

	return campaignModel.GetID(), nil
}

func (r *campaignRepo) Update(ctx context.Context, campaign *entity.Campaign) error {
	campaignModel, err := ToCampaignModel(campaign)
	if err != nil {
		return err
	}
	return r.baseRepo.Update(ctx, campaignModel)
}

func (r *campaignRepo) GetByID(ctx context.Context, id uint64) (*entity.Campaign, error) {
	campaign := new(Campaign)

	if err := r.baseRepo.Get(ctx, campaign, &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: id,
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}

	return ToCampaign(campaign)
}

func (r *campaignRepo) GetMany(ctx context.Context, f *CampaignFilter) ([]*entity.Campaign, *Pagination, error) {
	res, pagination, err := r.baseRepo.GetMany(ctx, new(Campaign), &Filter{
		Pagination: f.Pagination,
	})
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]*entity.Campaign, 0, len(res))
	for _, m := range res {
		campaign, err := ToCampaign(m.(*Campaign))
		if err != nil {
			return nil, nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	return campaigns, pagination, nil
}

func (r *campaignRepo) GetDueScheduled(ctx context.Context, now uint64) ([]*entity.Campaign, error) {
	res, _, err := r.baseRepo.GetMany(ctx, new(Campaign), &Filter{
		Conditions: []*Condition{
			{
				Field:         "status",
				Value:         uint32(entity.CampaignStatusScheduled),
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "scheduled_for",
				Value: now,
				Op:    OpLte,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	campaigns := make([]*entity.Campaign, 0, len(res))
	for _, m := range res {
		campaign, err := ToCampaign(m.(*Campaign))
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	return campaigns, nil
}

func (r *campaignRepo) Claim(ctx context.Context, id uint64) (bool, error) {
	rowsAffected, err := r.baseRepo.UpdateWhere(ctx, new(Campaign), &Campaign{
		Status:     goutil.Uint32(uint32(entity.CampaignStatusSending)),
		UpdateTime: goutil.Uint64(uint64(time.Now().Unix())),
	}, &Filter{
		Conditions: []*Condition{
			{
				Field:         "id",
				Value:         id,
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "status",
				Value: uint32(entity.CampaignStatusScheduled),
				Op:    OpEq,
			},
		},
	})
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

func ToCampaign(campaign *Campaign) (*entity.Campaign, error) {
	adhocEmails := make([]string, 0)
	if campaign.GetAdhocEmails() != "" {
		if err := json.Unmarshal([]byte(campaign.GetAdhocEmails()), &adhocEmails); err != nil {
			return nil, err
		}
	}

	var status uint32
	if campaign.Status != nil {
		status = *campaign.Status
	}

	var recipientType uint32
	if campaign.RecipientType != nil {
		recipientType = *campaign.RecipientType
	}

	return &entity.Campaign{
		ID:              campaign.ID,
		Subject:         campaign.Subject,
		HtmlContent:     campaign.HtmlContent,
		TextContent:     campaign.TextContent,
		RecipientType:   entity.RecipientType(recipientType),
		AdhocEmails:     adhocEmails,
		ReplyTo:         campaign.ReplyTo,
		SentBy:          campaign.SentBy,
		TotalRecipients: campaign.TotalRecipients,
		TotalSent:       campaign.TotalSent,
		TotalFailed:     campaign.TotalFailed,
		TotalOpened:     campaign.TotalOpened,
		Status:          entity.CampaignStatus(status),
		SentAt:          campaign.SentAt,
		ScheduledFor:    campaign.ScheduledFor,
		CreateTime:      campaign.CreateTime,
		UpdateTime:      campaign.UpdateTime,
	}, nil
}

func ToCampaignModel(campaign *entity.Campaign) (*Campaign, error) {
	var adhocEmails *string
	if len(campaign.AdhocEmails) > 0 {
		b, err := json.Marshal(campaign.AdhocEmails)
		if err != nil {
			return nil, err
		}
		adhocEmails = goutil.String(string(b))
	}

	return &Campaign{
		ID:              campaign.ID,
		Subject:         campaign.Subject,
		HtmlContent:     campaign.HtmlContent,
		TextContent:     campaign.TextContent,
		RecipientType:   goutil.Uint32(uint32(campaign.RecipientType)),
		AdhocEmails:     adhocEmails,
		ReplyTo:         campaign.ReplyTo,
		SentBy:          campaign.SentBy,
		TotalRecipients: campaign.TotalRecipients,
		TotalSent:       campaign.TotalSent,
		TotalFailed:     campaign.TotalFailed,
		TotalOpened:     campaign.TotalOpened,
		Status:          goutil.Uint32(uint32(campaign.Status)),
		SentAt:          campaign.SentAt,
		ScheduledFor:    campaign.ScheduledFor,
		CreateTime:      campaign.CreateTime,
		UpdateTime:      campaign.UpdateTime,
	}, nil
}
