package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aif/config"
	"aif/dep"
	"aif/entity"
	"aif/pkg/goutil"
	"aif/repo"
)

type mockCampaignRepo struct {
	nextID    uint64
	created   []*entity.Campaign
	updated   []*entity.Campaign
	due       []*entity.Campaign
	claimable map[uint64]bool
}

func (m *mockCampaignRepo) Create(_ context.Context, campaign *entity.Campaign) (uint64, error) {
	m.nextID++
	campaign.ID = goutil.Uint64(m.nextID)
	m.created = append(m.created, campaign)
	return m.nextID, nil
}

func (m *mockCampaignRepo) Update(_ context.Context, campaign *entity.Campaign) error {
	m.updated = append(m.updated, campaign)
	return nil
}

func (m *mockCampaignRepo) GetByID(_ context.Context, id uint64) (*entity.Campaign, error) {
	for _, c := range m.created {
		if c.GetID() == id {
			return c, nil
		}
	}
	return nil, repo.ErrCampaignNotFound
}

func (m *mockCampaignRepo) GetMany(_ context.Context, _ *repo.CampaignFilter) ([]*entity.Campaign, *repo.Pagination, error) {
	return m.created, &repo.Pagination{
		Page:    goutil.Uint32(1),
		HasNext: goutil.Bool(false),
		Total:   goutil.Int64(int64(len(m.created))),
	}, nil
}

func (m *mockCampaignRepo) GetDueScheduled(_ context.Context, _ uint64) ([]*entity.Campaign, error) {
	return m.due, nil
}

func (m *mockCampaignRepo) Claim(_ context.Context, id uint64) (bool, error) {
	if m.claimable == nil {
		return true, nil
	}
	ok := m.claimable[id]
	m.claimable[id] = false
	return ok, nil
}

type mockRecipientRepo struct {
	nextID      uint64
	created     []*entity.Recipient
	batches     int
	sentIDs     []uint64
	failedIDs   []uint64
	failureMsgs map[uint64]string
}

func (m *mockRecipientRepo) CreateMany(_ context.Context, recipients []*entity.Recipient) error {
	m.batches++
	for _, r := range recipients {
		m.nextID++
		r.ID = goutil.Uint64(m.nextID)
		m.created = append(m.created, r)
	}
	return nil
}

func (m *mockRecipientRepo) GetByTrackingToken(_ context.Context, token string) (*entity.Recipient, error) {
	for _, r := range m.created {
		if r.GetTrackingToken() == token {
			return r, nil
		}
	}
	return nil, repo.ErrRecipientNotFound
}

func (m *mockRecipientRepo) GetManyByCampaignID(_ context.Context, campaignID uint64) ([]*entity.Recipient, error) {
	res := make([]*entity.Recipient, 0)
	for _, r := range m.created {
		if r.GetCampaignID() == campaignID {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *mockRecipientRepo) CountOpenedByCampaignID(_ context.Context, campaignID uint64) (uint64, error) {
	var count uint64
	for _, r := range m.created {
		if r.GetCampaignID() == campaignID && r.OpenTime != nil {
			count++
		}
	}
	return count, nil
}

func (m *mockRecipientRepo) MarkSent(_ context.Context, id uint64, sentAt uint64) error {
	m.sentIDs = append(m.sentIDs, id)
	for _, r := range m.created {
		if r.GetID() == id {
			r.SentStatus = entity.SentStatusSent
			r.SentAt = goutil.Uint64(sentAt)
		}
	}
	return nil
}

func (m *mockRecipientRepo) MarkFailed(_ context.Context, id uint64, errMsg string) error {
	m.failedIDs = append(m.failedIDs, id)
	if m.failureMsgs == nil {
		m.failureMsgs = make(map[uint64]string)
	}
	m.failureMsgs[id] = errMsg
	for _, r := range m.created {
		if r.GetID() == id {
			r.SentStatus = entity.SentStatusFailed
			r.ErrorMessage = goutil.String(errMsg)
		}
	}
	return nil
}

func (m *mockRecipientRepo) MarkOpened(_ context.Context, id uint64, openTime uint64) (bool, error) {
	for _, r := range m.created {
		if r.GetID() == id {
			if r.OpenTime != nil {
				return false, nil
			}
			r.OpenTime = goutil.Uint64(openTime)
			return true, nil
		}
	}
	return false, repo.ErrRecipientNotFound
}

type mockSettingRepo struct {
	values map[string]string
	reads  []string
}

func (m *mockSettingRepo) GetValue(_ context.Context, name string) (string, error) {
	m.reads = append(m.reads, name)
	return m.values[name], nil
}

type mockEmailService struct {
	sent    []*dep.SendEmail
	failFor map[string]error
}

func (m *mockEmailService) SendEmail(_ context.Context, sendEmail *dep.SendEmail) error {
	if err, ok := m.failFor[sendEmail.To]; ok {
		return err
	}
	m.sent = append(m.sent, sendEmail)
	return nil
}

func (m *mockEmailService) Close(_ context.Context) error {
	return nil
}

type campaignTestEnv struct {
	cfg             *config.Config
	campaignRepo    *mockCampaignRepo
	recipientRepo   *mockRecipientRepo
	settingRepo     *mockSettingRepo
	emailService    *mockEmailService
	unsubscribeRepo *mockUnsubscribeRepo
	handler         CampaignHandler
}

func newCampaignTestEnv(batchSize int) *campaignTestEnv {
	cfg := config.NewConfig()
	cfg.Dispatch.BatchSize = batchSize
	cfg.Dispatch.BatchDelayMS = 0

	env := &campaignTestEnv{
		cfg:             cfg,
		campaignRepo:    new(mockCampaignRepo),
		recipientRepo:   new(mockRecipientRepo),
		settingRepo:     &mockSettingRepo{values: map[string]string{}},
		emailService:    &mockEmailService{failFor: map[string]error{}},
		unsubscribeRepo: new(mockUnsubscribeRepo),
	}

	resolver := NewResolver(new(mockUserRepo), new(mockWaitlistRepo), env.unsubscribeRepo)
	env.handler = NewCampaignHandler(cfg, env.campaignRepo, env.recipientRepo,
		env.settingRepo, env.emailService, resolver)

	return env
}

func sendingCampaign(emails int) *entity.Campaign {
	return &entity.Campaign{
		ID:              goutil.Uint64(1),
		Subject:         goutil.String("hello"),
		HtmlContent:     goutil.String("<p>hi</p>"),
		Status:          entity.CampaignStatusSending,
		TotalRecipients: goutil.Uint64(uint64(emails)),
	}
}

func TestDispatchAllSent(t *testing.T) {
	env := newCampaignTestEnv(50)

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	campaign := sendingCampaign(len(emails))

	result, err := env.handler.Dispatch(context.Background(), campaign, &ResolvedAudience{Emails: emails})
	require.NoError(t, err)

	assert.Equal(t, uint64(3), result.TotalRecipients)
	assert.Equal(t, uint64(3), result.Sent)
	assert.Equal(t, uint64(0), result.Failed)
	assert.Equal(t, result.TotalRecipients, result.Sent+result.Failed)

	assert.Equal(t, entity.CampaignStatusSent, campaign.GetStatus())
	assert.NotZero(t, campaign.GetSentAt())

	// every recipient row reaches a terminal status
	for _, r := range env.recipientRepo.created {
		assert.True(t, r.IsTerminal())
	}
}

func TestDispatchPartialFailure(t *testing.T) {
	env := newCampaignTestEnv(50)
	env.emailService.failFor["bounce@example.com"] = errors.New("mailbox full")

	emails := []string{"a@example.com", "bounce@example.com", "c@example.com"}
	campaign := sendingCampaign(len(emails))

	result, err := env.handler.Dispatch(context.Background(), campaign, &ResolvedAudience{Emails: emails})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), result.Sent)
	assert.Equal(t, uint64(1), result.Failed)
	assert.Equal(t, result.TotalRecipients, result.Sent+result.Failed)

	// one failure does not fail the campaign
	assert.Equal(t, entity.CampaignStatusSent, campaign.GetStatus())

	require.Len(t, env.recipientRepo.failedIDs, 1)
	failedID := env.recipientRepo.failedIDs[0]
	assert.Contains(t, env.recipientRepo.failureMsgs[failedID], "mailbox full")
}

func TestDispatchAllFailed(t *testing.T) {
	env := newCampaignTestEnv(50)
	env.emailService.failFor["a@example.com"] = errors.New("rejected")
	env.emailService.failFor["b@example.com"] = errors.New("rejected")

	emails := []string{"a@example.com", "b@example.com"}
	campaign := sendingCampaign(len(emails))

	result, err := env.handler.Dispatch(context.Background(), campaign, &ResolvedAudience{Emails: emails})
	require.NoError(t, err)

	assert.Equal(t, uint64(0), result.Sent)
	assert.Equal(t, entity.CampaignStatusFailed, campaign.GetStatus())
}

func TestDispatchBatches(t *testing.T) {
	env := newCampaignTestEnv(2)

	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com"}
	campaign := sendingCampaign(len(emails))

	result, err := env.handler.Dispatch(context.Background(), campaign, &ResolvedAudience{Emails: emails})
	require.NoError(t, err)

	assert.Equal(t, 3, env.recipientRepo.batches)
	assert.Equal(t, uint64(5), result.Sent)
	assert.Len(t, env.recipientRepo.created, 5)
}

func TestDispatchTokensUnique(t *testing.T) {
	env := newCampaignTestEnv(50)

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	campaign := sendingCampaign(len(emails))

	_, err := env.handler.Dispatch(context.Background(), campaign, &ResolvedAudience{Emails: emails})
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, r := range env.recipientRepo.created {
		token := r.GetTrackingToken()
		require.NotEmpty(t, token)
		_, dup := seen[token]
		assert.False(t, dup)
		seen[token] = struct{}{}
	}
}

func TestDispatchDefaultReplyTo(t *testing.T) {
	env := newCampaignTestEnv(50)
	env.settingRepo.values[entity.SettingDefaultReplyTo] = "support@appideasfinder.com"

	campaign := sendingCampaign(1)

	_, err := env.handler.Dispatch(context.Background(), campaign, &ResolvedAudience{Emails: []string{"a@example.com"}})
	require.NoError(t, err)

	assert.Contains(t, env.settingRepo.reads, entity.SettingDefaultReplyTo)
	require.Len(t, env.emailService.sent, 1)
	assert.Equal(t, "support@appideasfinder.com", env.emailService.sent[0].ReplyTo)
}

func TestDispatchExplicitReplyToSkipsSetting(t *testing.T) {
	env := newCampaignTestEnv(50)

	campaign := sendingCampaign(1)
	campaign.ReplyTo = goutil.String("founder@appideasfinder.com")

	_, err := env.handler.Dispatch(context.Background(), campaign, &ResolvedAudience{Emails: []string{"a@example.com"}})
	require.NoError(t, err)

	assert.Empty(t, env.settingRepo.reads)
	require.Len(t, env.emailService.sent, 1)
	assert.Equal(t, "founder@appideasfinder.com", env.emailService.sent[0].ReplyTo)
}

func adminContextInfo() ContextInfo {
	return ContextInfo{User: &entity.User{ID: goutil.Uint64(7)}}
}

func TestSendCampaignAdhoc(t *testing.T) {
	env := newCampaignTestEnv(50)

	req := &SendCampaignRequest{
		ContextInfo:   adminContextInfo(),
		Subject:       goutil.String("launch"),
		HtmlContent:   goutil.String("<p>we launched</p>"),
		RecipientType: goutil.String("adhoc"),
		AdhocEmails:   []string{" A@b.com ", "a@b.com"},
	}
	res := new(SendCampaignResponse)

	require.NoError(t, env.handler.SendCampaign(context.Background(), req, res))

	assert.Equal(t, uint64(1), *res.TotalRecipients)
	assert.Equal(t, uint64(1), *res.Sent)
	assert.Equal(t, uint64(0), *res.Failed)

	require.Len(t, env.campaignRepo.created, 1)
	created := env.campaignRepo.created[0]
	assert.Equal(t, entity.CampaignStatusSent, created.GetStatus())
	assert.Equal(t, uint64(1), created.GetTotalRecipients())
	assert.Equal(t, uint64(7), *created.SentBy)

	require.Len(t, env.emailService.sent, 1)
	assert.Equal(t, "a@b.com", env.emailService.sent[0].To)
}

func TestSendCampaignNoRecipients(t *testing.T) {
	env := newCampaignTestEnv(50)
	env.unsubscribeRepo.emailSet = map[string]struct{}{"a@b.com": {}}

	req := &SendCampaignRequest{
		ContextInfo:   adminContextInfo(),
		Subject:       goutil.String("launch"),
		HtmlContent:   goutil.String("<p>we launched</p>"),
		RecipientType: goutil.String("adhoc"),
		AdhocEmails:   []string{"a@b.com"},
	}
	res := new(SendCampaignResponse)

	err := env.handler.SendCampaign(context.Background(), req, res)
	assert.ErrorIs(t, err, ErrNoRecipients)

	// no campaign row exists for an empty audience
	assert.Empty(t, env.campaignRepo.created)
	assert.Empty(t, env.emailService.sent)
}

func TestSendCampaignScheduled(t *testing.T) {
	env := newCampaignTestEnv(50)

	req := &SendCampaignRequest{
		ContextInfo:   adminContextInfo(),
		Subject:       goutil.String("later"),
		HtmlContent:   goutil.String("<p>soon</p>"),
		RecipientType: goutil.String("waitlist"),
		ScheduledFor:  goutil.Uint64(uint64(4102444800)), // 2100-01-01
	}
	res := new(SendCampaignResponse)

	require.NoError(t, env.handler.SendCampaign(context.Background(), req, res))

	assert.Equal(t, uint64(0), *res.TotalRecipients)

	require.Len(t, env.campaignRepo.created, 1)
	created := env.campaignRepo.created[0]
	assert.Equal(t, entity.CampaignStatusScheduled, created.GetStatus())
	assert.Equal(t, uint64(4102444800), created.GetScheduledFor())

	// nothing goes out until the trigger picks it up
	assert.Empty(t, env.emailService.sent)
	assert.Empty(t, env.recipientRepo.created)
}

func TestGetCampaign(t *testing.T) {
	env := newCampaignTestEnv(50)

	req := &SendCampaignRequest{
		ContextInfo:   adminContextInfo(),
		Subject:       goutil.String("launch"),
		HtmlContent:   goutil.String("<p>we launched</p>"),
		RecipientType: goutil.String("adhoc"),
		AdhocEmails:   []string{"a@b.com", "c@d.com"},
	}
	require.NoError(t, env.handler.SendCampaign(context.Background(), req, new(SendCampaignResponse)))

	getReq := &GetCampaignRequest{
		ContextInfo: adminContextInfo(),
		CampaignID:  goutil.Uint64(1),
	}
	getRes := new(GetCampaignResponse)
	require.NoError(t, env.handler.GetCampaign(context.Background(), getReq, getRes))

	require.NotNil(t, getRes.Campaign)
	assert.Equal(t, uint64(1), getRes.Campaign.GetID())
	require.Len(t, getRes.Recipients, 2)
	for _, r := range getRes.Recipients {
		assert.Equal(t, uint64(1), r.GetCampaignID())
		assert.True(t, r.IsTerminal())
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	env := newCampaignTestEnv(50)

	req := &GetCampaignRequest{
		ContextInfo: adminContextInfo(),
		CampaignID:  goutil.Uint64(99),
	}
	err := env.handler.GetCampaign(context.Background(), req, new(GetCampaignResponse))
	assert.ErrorIs(t, err, repo.ErrCampaignNotFound)
}

func TestGetCampaignMissingID(t *testing.T) {
	env := newCampaignTestEnv(50)

	req := &GetCampaignRequest{ContextInfo: adminContextInfo()}
	err := env.handler.GetCampaign(context.Background(), req, new(GetCampaignResponse))
	assert.Error(t, err)
}

func TestSendCampaignValidation(t *testing.T) {
	env := newCampaignTestEnv(50)

	tests := []struct {
		name string
		req  *SendCampaignRequest
	}{
		{
			name: "missing subject",
			req: &SendCampaignRequest{
				ContextInfo:   adminContextInfo(),
				HtmlContent:   goutil.String("<p>hi</p>"),
				RecipientType: goutil.String("adhoc"),
			},
		},
		{
			name: "missing html content",
			req: &SendCampaignRequest{
				ContextInfo:   adminContextInfo(),
				Subject:       goutil.String("hello"),
				RecipientType: goutil.String("adhoc"),
			},
		},
		{
			name: "bad recipient type",
			req: &SendCampaignRequest{
				ContextInfo:   adminContextInfo(),
				Subject:       goutil.String("hello"),
				HtmlContent:   goutil.String("<p>hi</p>"),
				RecipientType: goutil.String("everyone"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := env.handler.SendCampaign(context.Background(), tc.req, new(SendCampaignResponse))
			assert.Error(t, err)
			assert.Empty(t, env.campaignRepo.created)
		})
	}
}
