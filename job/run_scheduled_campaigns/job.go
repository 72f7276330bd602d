package run_scheduled_campaigns

import (
	"context"

	"github.com/rs/zerolog/log"

	"aif/handler"
	"aif/pkg/service"
)

// RunScheduledCampaigns is the cron entrypoint for deployments that invoke
// the trigger as a one-shot binary instead of the HTTP endpoint. Both paths
// share the same handler.
type RunScheduledCampaigns struct {
	cronHandler handler.CronHandler
}

func New(cronHandler handler.CronHandler) service.Job {
	return &RunScheduledCampaigns{
		cronHandler: cronHandler,
	}
}

func (j *RunScheduledCampaigns) Init(_ context.Context) error {
	return nil
}

func (j *RunScheduledCampaigns) Run(ctx context.Context) error {
	var (
		req = new(handler.RunScheduledCampaignsRequest)
		res = new(handler.RunScheduledCampaignsResponse)
	)
	if err := j.cronHandler.RunScheduledCampaigns(ctx, req, res); err != nil {
		return err
	}

	log.Ctx(ctx).Info().Msgf("run scheduled campaigns done, processed: %d", *res.Processed)

	return nil
}

func (j *RunScheduledCampaigns) CleanUp(_ context.Context) error {
	return nil
}
