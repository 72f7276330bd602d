package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"aif/config"
	"aif/dep"
	"aif/entity"
	"aif/pkg/errutil"
	"aif/pkg/goutil"
	"aif/pkg/validator"
	"aif/repo"
)

type CampaignHandler interface {
	SendCampaign(ctx context.Context, req *SendCampaignRequest, res *SendCampaignResponse) error
	GetCampaign(ctx context.Context, req *GetCampaignRequest, res *GetCampaignResponse) error
	GetCampaigns(ctx context.Context, req *GetCampaignsRequest, res *GetCampaignsResponse) error
	Dispatch(ctx context.Context, campaign *entity.Campaign, audience *ResolvedAudience) (*DispatchResult, error)
}

type campaignHandler struct {
	cfg           *config.Config
	campaignRepo  repo.CampaignRepo
	recipientRepo repo.RecipientRepo
	settingRepo   repo.SettingRepo
	emailService  dep.EmailService
	resolver      *Resolver
}

func NewCampaignHandler(cfg *config.Config, campaignRepo repo.CampaignRepo, recipientRepo repo.RecipientRepo,
	settingRepo repo.SettingRepo, emailService dep.EmailService, resolver *Resolver) CampaignHandler {
	return &campaignHandler{
		cfg:           cfg,
		campaignRepo:  campaignRepo,
		recipientRepo: recipientRepo,
		settingRepo:   settingRepo,
		emailService:  emailService,
		resolver:      resolver,
	}
}

type SendCampaignRequest struct {
	ContextInfo

	Subject       *string  `json:"subject,omitempty"`
	HtmlContent   *string  `json:"html_content,omitempty"`
	TextContent   *string  `json:"text_content,omitempty"`
	RecipientType *string  `json:"recipient_type,omitempty"`
	AdhocEmails   []string `json:"adhoc_emails,omitempty"`
	ReplyTo       *string  `json:"reply_to,omitempty"`
	ScheduledFor  *uint64  `json:"scheduled_for,omitempty"`
}

func (r *SendCampaignRequest) GetRecipientType() string {
	if r != nil && r.RecipientType != nil {
		return *r.RecipientType
	}
	return ""
}

func (r *SendCampaignRequest) GetScheduledFor() uint64 {
	if r != nil && r.ScheduledFor != nil {
		return *r.ScheduledFor
	}
	return 0
}

type SendCampaignResponse struct {
	Success         *bool   `json:"success,omitempty"`
	CampaignID      *uint64 `json:"campaign_id,omitempty"`
	TotalRecipients *uint64 `json:"total_recipients,omitempty"`
	Sent            *uint64 `json:"sent,omitempty"`
	Failed          *uint64 `json:"failed,omitempty"`
}

var sendCampaignValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo":    ContextInfoValidator(false),
	"subject":        &validator.String{MinLen: 1, MaxLen: 200},
	"html_content":   &validator.String{MinLen: 1},
	"text_content":   &validator.String{Optional: true},
	"recipient_type": RecipientTypeValidator(),
	"adhoc_emails": &validator.Slice{
		Optional:  true,
		MaxLen:    1000,
		Validator: &validator.String{MinLen: 1, MaxLen: 254},
	},
	"reply_to":      EmailValidator(true),
	"scheduled_for": &validator.UInt64{Optional: true},
})

func (h *campaignHandler) SendCampaign(ctx context.Context, req *SendCampaignRequest, res *SendCampaignResponse) error {
	if err := sendCampaignValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	var (
		recipientType = entity.SupportedRecipientTypes[req.GetRecipientType()]
		now           = uint64(time.Now().Unix())
	)

	// deferred sends are picked up by the scheduled trigger later
	if req.GetScheduledFor() > now {
		campaign := h.newCampaign(req, entity.CampaignStatusScheduled, recipientType, now)

		campaignID, err := h.campaignRepo.Create(ctx, campaign)
		if err != nil {
			log.Ctx(ctx).Error().Msgf("create scheduled campaign failed: %v", err)
			return err
		}

		res.Success = goutil.Bool(true)
		res.CampaignID = goutil.Uint64(campaignID)
		res.TotalRecipients = goutil.Uint64(0)
		res.Sent = goutil.Uint64(0)
		res.Failed = goutil.Uint64(0)
		return nil
	}

	// audience is resolved before the campaign row exists, an empty list
	// must not leave a campaign behind
	audience, err := h.resolver.Resolve(ctx, recipientType, req.AdhocEmails)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("resolve audience failed: %v", err)
		return err
	}
	if len(audience.Emails) == 0 {
		return ErrNoRecipients
	}

	campaign := h.newCampaign(req, entity.CampaignStatusSending, recipientType, now)
	campaign.TotalRecipients = goutil.Uint64(uint64(len(audience.Emails)))

	campaignID, err := h.campaignRepo.Create(ctx, campaign)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("create campaign failed: %v", err)
		return err
	}

	result, err := h.Dispatch(ctx, campaign, audience)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("dispatch campaign failed: %v, campaign_id: %v", err, campaignID)

		campaign.Update(&entity.Campaign{Status: entity.CampaignStatusFailed})
		if updateErr := h.campaignRepo.Update(ctx, campaign); updateErr != nil {
			log.Ctx(ctx).Error().Msgf("set campaign to failed failed: %v, campaign_id: %v", updateErr, campaignID)
		}
		return err
	}

	res.Success = goutil.Bool(true)
	res.CampaignID = goutil.Uint64(campaignID)
	res.TotalRecipients = goutil.Uint64(result.TotalRecipients)
	res.Sent = goutil.Uint64(result.Sent)
	res.Failed = goutil.Uint64(result.Failed)

	return nil
}

func (h *campaignHandler) newCampaign(req *SendCampaignRequest, status entity.CampaignStatus,
	recipientType entity.RecipientType, now uint64) *entity.Campaign {
	campaign := &entity.Campaign{
		Subject:       req.Subject,
		HtmlContent:   req.HtmlContent,
		TextContent:   req.TextContent,
		RecipientType: recipientType,
		AdhocEmails:   req.AdhocEmails,
		ReplyTo:       req.ReplyTo,
		SentBy:        goutil.Uint64(req.GetUserID()),
		TotalSent:     goutil.Uint64(0),
		TotalFailed:   goutil.Uint64(0),
		Status:        status,
		CreateTime:    goutil.Uint64(now),
		UpdateTime:    goutil.Uint64(now),
	}
	if status == entity.CampaignStatusScheduled {
		campaign.ScheduledFor = req.ScheduledFor
	}
	return campaign
}

// SendOutcome is the per-address result of one dispatch. Failures are data
// here, not errors, one bad address never aborts the rest.
type SendOutcome struct {
	Email string
	Err   error
}

type DispatchResult struct {
	TotalRecipients uint64
	Sent            uint64
	Failed          uint64
	Outcomes        []*SendOutcome
}

// Dispatch runs the send loop for an already-created campaign: recipients
// are inserted and sent in batches, with a configured pause between batches
// to ease provider rate-limit pressure. Per-recipient send failures are
// recorded on the row and swallowed; only campaign-level failures return an
// error.
func (h *campaignHandler) Dispatch(ctx context.Context, campaign *entity.Campaign, audience *ResolvedAudience) (*DispatchResult, error) {
	replyTo := campaign.GetReplyTo()
	if replyTo == "" {
		// explicit settings read at send start, not ambient state
		v, err := h.settingRepo.GetValue(ctx, entity.SettingDefaultReplyTo)
		if err != nil {
			return nil, fmt.Errorf("read default reply-to failed: %v", err)
		}
		replyTo = v
	}

	var (
		batchSize = h.cfg.Dispatch.BatchSize
		delay     = time.Duration(h.cfg.Dispatch.BatchDelayMS) * time.Millisecond
		emails    = audience.Emails
		now       = uint64(time.Now().Unix())

		result = &DispatchResult{
			TotalRecipients: uint64(len(emails)),
			Outcomes:        make([]*SendOutcome, 0, len(emails)),
		}
	)
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}

	for start := 0; start < len(emails); start += batchSize {
		end := start + batchSize
		if end > len(emails) {
			end = len(emails)
		}

		recipients := make([]*entity.Recipient, 0, end-start)
		for _, email := range emails[start:end] {
			recipient := &entity.Recipient{
				CampaignID:    campaign.ID,
				Email:         goutil.String(email),
				TrackingToken: goutil.String(uuid.NewString()),
				SentStatus:    entity.SentStatusPending,
				CreateTime:    goutil.Uint64(now),
			}
			if userID, ok := audience.UserIDs[email]; ok {
				recipient.UserID = goutil.Uint64(userID)
			}
			recipients = append(recipients, recipient)
		}

		if err := h.recipientRepo.CreateMany(ctx, recipients); err != nil {
			return nil, fmt.Errorf("create recipients failed: %v", err)
		}

		for _, recipient := range recipients {
			outcome := &SendOutcome{Email: recipient.GetEmail()}
			result.Outcomes = append(result.Outcomes, outcome)

			if err := h.sendOne(ctx, campaign, recipient, replyTo); err != nil {
				outcome.Err = err
				result.Failed++

				if markErr := h.recipientRepo.MarkFailed(ctx, recipient.GetID(), err.Error()); markErr != nil {
					log.Ctx(ctx).Error().Msgf("mark recipient failed failed: %v, recipient_id: %v", markErr, recipient.GetID())
				}
				continue
			}

			result.Sent++
			if markErr := h.recipientRepo.MarkSent(ctx, recipient.GetID(), uint64(time.Now().Unix())); markErr != nil {
				log.Ctx(ctx).Error().Msgf("mark recipient sent failed: %v, recipient_id: %v", markErr, recipient.GetID())
			}
		}

		if end < len(emails) && delay > 0 {
			time.Sleep(delay)
		}
	}

	status := entity.CampaignStatusSent
	if result.Sent == 0 && result.TotalRecipients > 0 {
		status = entity.CampaignStatusFailed
	}

	campaign.Update(&entity.Campaign{
		Status:      status,
		TotalSent:   goutil.Uint64(result.Sent),
		TotalFailed: goutil.Uint64(result.Failed),
		SentAt:      goutil.Uint64(uint64(time.Now().Unix())),
	})
	if err := h.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("finalize campaign failed: %v", err)
	}

	return result, nil
}

func (h *campaignHandler) sendOne(ctx context.Context, campaign *entity.Campaign, recipient *entity.Recipient, replyTo string) error {
	html, err := RenderCampaignHtml(h.cfg.Tracking, campaign.GetHtmlContent(), recipient.GetTrackingToken())
	if err != nil {
		return fmt.Errorf("render email failed: %v", err)
	}

	return h.emailService.SendEmail(ctx, &dep.SendEmail{
		From: &dep.Sender{
			Email: h.cfg.DefaultSender.Email,
			Name:  h.cfg.DefaultSender.Name,
		},
		To:          recipient.GetEmail(),
		ReplyTo:     replyTo,
		Subject:     campaign.GetSubject(),
		HtmlContent: html,
		TextContent: campaign.GetTextContent(),
	})
}

type GetCampaignRequest struct {
	ContextInfo

	CampaignID *uint64 `schema:"campaign_id,omitempty"`
}

func (r *GetCampaignRequest) GetCampaignID() uint64 {
	if r != nil && r.CampaignID != nil {
		return *r.CampaignID
	}
	return 0
}

type GetCampaignResponse struct {
	Campaign   *entity.Campaign    `json:"campaign,omitempty"`
	Recipients []*entity.Recipient `json:"recipients,omitempty"`
}

var getCampaignValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator(false),
	"campaign_id": &validator.UInt64{Min: goutil.Uint64(1)},
})

// GetCampaign returns one campaign with its per-recipient send results, the
// drill-down view behind the campaign list.
func (h *campaignHandler) GetCampaign(ctx context.Context, req *GetCampaignRequest, res *GetCampaignResponse) error {
	if err := getCampaignValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	campaign, err := h.campaignRepo.GetByID(ctx, req.GetCampaignID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaign failed: %v, campaign_id: %v", err, req.GetCampaignID())
		return err
	}

	recipients, err := h.recipientRepo.GetManyByCampaignID(ctx, campaign.GetID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaign recipients failed: %v, campaign_id: %v", err, campaign.GetID())
		return err
	}

	res.Campaign = campaign
	res.Recipients = recipients

	return nil
}

type GetCampaignsRequest struct {
	ContextInfo

	Page  *uint32 `schema:"page,omitempty"`
	Limit *uint32 `schema:"limit,omitempty"`
}

type GetCampaignsResponse struct {
	Campaigns  []*entity.Campaign `json:"campaigns,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

func (h *campaignHandler) GetCampaigns(ctx context.Context, req *GetCampaignsRequest, res *GetCampaignsResponse) error {
	limit := req.Limit
	if limit == nil {
		limit = goutil.Uint32(entity.DefaultPageLimit)
	}

	campaigns, pagination, err := h.campaignRepo.GetMany(ctx, &repo.CampaignFilter{
		Pagination: &repo.Pagination{
			Page:  req.Page,
			Limit: limit,
		},
	})
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaigns failed: %v", err)
		return err
	}

	res.Campaigns = campaigns
	res.Pagination = &entity.Pagination{
		Page:    pagination.Page,
		Limit:   pagination.Limit,
		HasNext: pagination.HasNext,
		Total:   pagination.Total,
	}

	return nil
}
