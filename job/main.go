package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"aif/config"
	"aif/dep"
	"aif/handler"
	"aif/job/record_opens"
	"aif/job/run_scheduled_campaigns"
	"aif/pkg/logutil"
	"aif/pkg/service"
	"aif/repo"
)

func main() {
	var (
		opt = config.NewOptions()
		ctx = logutil.InitZeroLog(context.Background(), opt.LogLevel)
	)

	cfg := config.NewConfig()
	if err := cfg.Load(ctx, opt.ConfigPath); err != nil {
		log.Ctx(ctx).Error().Msgf("load config failed: %v", err)
		os.Exit(1)
	}

	baseRepo, err := repo.NewBaseRepo(ctx, cfg.MetadataDB)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init base repo failed, err: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := baseRepo.Close(ctx); err != nil {
			log.Ctx(ctx).Error().Msgf("close base repo failed, err: %v", err)
		}
	}()

	emailService, err := dep.NewEmailService(ctx, cfg.Brevo)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init email service failed, err: %v", err)
		os.Exit(1)
	}
	defer emailService.Close(ctx)

	var (
		campaignRepo    = repo.NewCampaignRepo(ctx, baseRepo)
		recipientRepo   = repo.NewRecipientRepo(ctx, baseRepo)
		userRepo        = repo.NewUserRepo(ctx, baseRepo)
		waitlistRepo    = repo.NewWaitlistRepo(ctx, baseRepo)
		unsubscribeRepo = repo.NewUnsubscribeRepo(ctx, baseRepo)
		settingRepo     = repo.NewSettingRepo(ctx, baseRepo)
	)

	resolver := handler.NewResolver(userRepo, waitlistRepo, unsubscribeRepo)
	campaignHandler := handler.NewCampaignHandler(cfg, campaignRepo, recipientRepo, settingRepo, emailService, resolver)
	cronHandler := handler.NewCronHandler(campaignRepo, resolver, campaignHandler)

	jobs := map[string]service.Job{
		"run-scheduled-campaigns": run_scheduled_campaigns.New(cronHandler),
		"record-opens":            record_opens.New(cfg, campaignRepo, recipientRepo),
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go <job_name>")
		os.Exit(1)
	}

	jobName := os.Args[1]
	job, exists := jobs[jobName]
	if !exists {
		log.Ctx(ctx).Error().Msgf("job %s not found", jobName)
		os.Exit(1)
	}

	if err := job.Init(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("init job err: %v", err)
		os.Exit(1)
	}

	if err := job.Run(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("run job err: %v", err)
		os.Exit(1)
	}

	if err := job.CleanUp(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("cleanup job err: %v", err)
		os.Exit(1)
	}

	log.Ctx(ctx).Info().Msg("job executed successfully")
}
