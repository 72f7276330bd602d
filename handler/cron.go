package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"aif/entity"
	"aif/pkg/goutil"
	"aif/repo"
)

type CronHandler interface {
	RunScheduledCampaigns(ctx context.Context, req *RunScheduledCampaignsRequest, res *RunScheduledCampaignsResponse) error
}

type cronHandler struct {
	campaignRepo    repo.CampaignRepo
	resolver        *Resolver
	campaignHandler CampaignHandler
}

func NewCronHandler(campaignRepo repo.CampaignRepo, resolver *Resolver, campaignHandler CampaignHandler) CronHandler {
	return &cronHandler{
		campaignRepo:    campaignRepo,
		resolver:        resolver,
		campaignHandler: campaignHandler,
	}
}

type RunScheduledCampaignsRequest struct{}

type RunScheduledCampaignsResponse struct {
	Message   *string `json:"message,omitempty"`
	Processed *uint64 `json:"processed,omitempty"`
}

type statusUpdate struct {
	campaign *entity.Campaign
	update   *entity.Campaign
}

// RunScheduledCampaigns picks up campaigns whose scheduled time has passed
// and dispatches them one at a time. Each campaign is claimed with a
// conditional update first, so overlapping trigger invocations never
// double-send. A failed campaign is marked and skipped, the rest of the
// batch still runs.
func (h *cronHandler) RunScheduledCampaigns(ctx context.Context, req *RunScheduledCampaignsRequest, res *RunScheduledCampaignsResponse) error {
	now := uint64(time.Now().Unix())

	campaigns, err := h.campaignRepo.GetDueScheduled(ctx, now)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get due scheduled campaigns failed: %v", err)
		return err
	}

	// failure marks go through one writer goroutine so the dispatch loop
	// never blocks on them
	updateCh := make(chan *statusUpdate, len(campaigns)+1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for su := range updateCh {
			su.campaign.Update(su.update)
			if err := h.campaignRepo.Update(gctx, su.campaign); err != nil {
				log.Ctx(gctx).Error().Msgf("update campaign status failed: %v, campaign_id: %v",
					err, su.campaign.GetID())
				return err
			}
		}
		return nil
	})

	var processed uint64
	for _, campaign := range campaigns {
		claimed, err := h.campaignRepo.Claim(ctx, campaign.GetID())
		if err != nil {
			log.Ctx(ctx).Error().Msgf("claim campaign failed: %v, campaign_id: %v", err, campaign.GetID())
			continue
		}
		if !claimed {
			// another trigger run got here first
			continue
		}
		campaign.Status = entity.CampaignStatusSending

		if err := h.runOne(ctx, campaign); err != nil {
			log.Ctx(ctx).Error().Msgf("run scheduled campaign failed: %v, campaign_id: %v", err, campaign.GetID())
			updateCh <- &statusUpdate{
				campaign: campaign,
				update:   &entity.Campaign{Status: entity.CampaignStatusFailed},
			}
			continue
		}

		processed++
	}

	close(updateCh)
	if err := g.Wait(); err != nil {
		return err
	}

	res.Message = goutil.String(fmt.Sprintf("processed %d scheduled campaigns", processed))
	res.Processed = goutil.Uint64(processed)

	return nil
}

func (h *cronHandler) runOne(ctx context.Context, campaign *entity.Campaign) error {
	// scheduled campaigns resolve their audience at send time, not at
	// creation time
	audience, err := h.resolver.Resolve(ctx, campaign.GetRecipientType(), campaign.AdhocEmails)
	if err != nil {
		return fmt.Errorf("resolve audience failed: %v", err)
	}
	if len(audience.Emails) == 0 {
		return fmt.Errorf("no recipients after filtering")
	}

	// the recipient count is fixed at resolution and never changes after
	campaign.TotalRecipients = goutil.Uint64(uint64(len(audience.Emails)))
	if err := h.campaignRepo.Update(ctx, campaign); err != nil {
		return fmt.Errorf("persist recipient count failed: %v", err)
	}

	if _, err := h.campaignHandler.Dispatch(ctx, campaign, audience); err != nil {
		return fmt.Errorf("dispatch failed: %v", err)
	}

	return nil
}
