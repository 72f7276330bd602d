package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aif/entity"
	"aif/pkg/goutil"
)

func newCronTestEnv(due []*entity.Campaign, claimable map[uint64]bool) (*campaignTestEnv, CronHandler) {
	env := newCampaignTestEnv(50)
	env.campaignRepo.due = due
	env.campaignRepo.claimable = claimable
	env.campaignRepo.nextID = uint64(len(due))

	resolver := NewResolver(new(mockUserRepo), new(mockWaitlistRepo), env.unsubscribeRepo)
	cronHandler := NewCronHandler(env.campaignRepo, resolver, env.handler)

	return env, cronHandler
}

func dueCampaign(id uint64, adhocEmails ...string) *entity.Campaign {
	return &entity.Campaign{
		ID:            goutil.Uint64(id),
		Subject:       goutil.String("scheduled"),
		HtmlContent:   goutil.String("<p>later</p>"),
		RecipientType: entity.RecipientTypeAdhoc,
		AdhocEmails:   adhocEmails,
		Status:        entity.CampaignStatusScheduled,
		ScheduledFor:  goutil.Uint64(1),
	}
}

func TestRunScheduledCampaignsDispatchesDue(t *testing.T) {
	campaign := dueCampaign(1, "a@example.com", "b@example.com")
	env, cronHandler := newCronTestEnv([]*entity.Campaign{campaign}, nil)

	res := new(RunScheduledCampaignsResponse)
	require.NoError(t, cronHandler.RunScheduledCampaigns(context.Background(), new(RunScheduledCampaignsRequest), res))

	assert.Equal(t, uint64(1), *res.Processed)
	assert.Equal(t, entity.CampaignStatusSent, campaign.GetStatus())
	assert.Equal(t, uint64(2), campaign.GetTotalRecipients())
	assert.Len(t, env.emailService.sent, 2)
}

func TestRunScheduledCampaignsSkipsUnclaimed(t *testing.T) {
	campaign := dueCampaign(1, "a@example.com")
	env, cronHandler := newCronTestEnv([]*entity.Campaign{campaign}, map[uint64]bool{1: false})

	res := new(RunScheduledCampaignsResponse)
	require.NoError(t, cronHandler.RunScheduledCampaigns(context.Background(), new(RunScheduledCampaignsRequest), res))

	assert.Equal(t, uint64(0), *res.Processed)
	assert.Empty(t, env.emailService.sent)
	assert.Equal(t, entity.CampaignStatusScheduled, campaign.GetStatus())
}

func TestRunScheduledCampaignsClaimIsSingleUse(t *testing.T) {
	campaign := dueCampaign(1, "a@example.com")
	env, cronHandler := newCronTestEnv([]*entity.Campaign{campaign}, map[uint64]bool{1: true})

	res := new(RunScheduledCampaignsResponse)
	require.NoError(t, cronHandler.RunScheduledCampaigns(context.Background(), new(RunScheduledCampaignsRequest), res))
	require.Equal(t, uint64(1), *res.Processed)

	// a second run sees the same due row but cannot claim it again
	campaign.Status = entity.CampaignStatusScheduled
	res = new(RunScheduledCampaignsResponse)
	require.NoError(t, cronHandler.RunScheduledCampaigns(context.Background(), new(RunScheduledCampaignsRequest), res))

	assert.Equal(t, uint64(0), *res.Processed)
	assert.Len(t, env.emailService.sent, 1)
}

func TestRunScheduledCampaignsEmptyAudienceMarksFailed(t *testing.T) {
	campaign := dueCampaign(1, "gone@example.com")
	env, cronHandler := newCronTestEnv([]*entity.Campaign{campaign}, nil)
	env.unsubscribeRepo.emailSet = map[string]struct{}{"gone@example.com": {}}

	res := new(RunScheduledCampaignsResponse)
	require.NoError(t, cronHandler.RunScheduledCampaigns(context.Background(), new(RunScheduledCampaignsRequest), res))

	assert.Equal(t, uint64(0), *res.Processed)
	assert.Equal(t, entity.CampaignStatusFailed, campaign.GetStatus())
	assert.Empty(t, env.emailService.sent)
}

func TestRunScheduledCampaignsFailureDoesNotStopBatch(t *testing.T) {
	var (
		broken  = dueCampaign(1, "gone@example.com")
		healthy = dueCampaign(2, "ok@example.com")
	)
	env, cronHandler := newCronTestEnv([]*entity.Campaign{broken, healthy}, nil)
	env.unsubscribeRepo.emailSet = map[string]struct{}{"gone@example.com": {}}

	res := new(RunScheduledCampaignsResponse)
	require.NoError(t, cronHandler.RunScheduledCampaigns(context.Background(), new(RunScheduledCampaignsRequest), res))

	assert.Equal(t, uint64(1), *res.Processed)
	assert.Equal(t, entity.CampaignStatusFailed, broken.GetStatus())
	assert.Equal(t, entity.CampaignStatusSent, healthy.GetStatus())
	assert.Len(t, env.emailService.sent, 1)
}
