package record_opens

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"aif/config"
	"aif/entity"
	"aif/pkg/goutil"
	"aif/pkg/mq"
	"aif/pkg/service"
	"aif/repo"
)

// RecordOpens consumes email-opened events and keeps the per-campaign open
// counter current. The pixel endpoint already wrote the recipient row, so
// the counter is recomputed from the store rather than incremented, which
// makes redelivered messages harmless.
type RecordOpens struct {
	cfg           *config.Config
	campaignRepo  repo.CampaignRepo
	recipientRepo repo.RecipientRepo
	consumer      *mq.Consumer
}

func New(cfg *config.Config, campaignRepo repo.CampaignRepo, recipientRepo repo.RecipientRepo) service.Job {
	return &RecordOpens{
		cfg:           cfg,
		campaignRepo:  campaignRepo,
		recipientRepo: recipientRepo,
	}
}

func (j *RecordOpens) Init(ctx context.Context) error {
	mq.RegisterHandler(mq.PayloadEmailOpened, j.handleEmailOpened)

	consumer, err := mq.NewConsumer(ctx, mq.ConsumerConfig{
		Brokers:       j.cfg.Kafka.Brokers,
		Topic:         j.cfg.Kafka.OpenTopic,
		ConsumerGroup: j.cfg.Kafka.ConsumerGroup,
		InitialOffset: "oldest",
	})
	if err != nil {
		return err
	}
	j.consumer = consumer

	return nil
}

func (j *RecordOpens) Run(ctx context.Context) error {
	// the consumer runs in the background, hold the process open until told
	// to stop
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	return nil
}

func (j *RecordOpens) CleanUp(_ context.Context) error {
	if j.consumer != nil {
		return j.consumer.Close()
	}
	return nil
}

func (j *RecordOpens) handleEmailOpened(ctx context.Context, msg *mq.Message) error {
	event := new(mq.EmailOpened)
	if err := msg.ParseBody(event); err != nil {
		log.Ctx(ctx).Error().Msgf("parse email opened event failed: %v", err)
		return err
	}

	count, err := j.recipientRepo.CountOpenedByCampaignID(ctx, event.GetCampaignID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("count opened recipients failed: %v, campaign_id: %v", err, event.GetCampaignID())
		return err
	}

	campaign, err := j.campaignRepo.GetByID(ctx, event.GetCampaignID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaign failed: %v, campaign_id: %v", err, event.GetCampaignID())
		return err
	}

	if hasChange := campaign.Update(&entity.Campaign{
		TotalOpened: goutil.Uint64(count),
	}); !hasChange {
		return nil
	}

	if err := j.campaignRepo.Update(ctx, campaign); err != nil {
		log.Ctx(ctx).Error().Msgf("update campaign open count failed: %v, campaign_id: %v", err, event.GetCampaignID())
		return err
	}

	return nil
}
