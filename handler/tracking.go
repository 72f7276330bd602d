package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"aif/pkg/goutil"
	"aif/pkg/httputil"
	"aif/pkg/mq"
	"aif/repo"
)

type TrackingHandler interface {
	OnEmailOpen(w http.ResponseWriter, r *http.Request)
}

type trackingHandler struct {
	recipientRepo repo.RecipientRepo
	producer      *mq.Producer
}

// NewTrackingHandler returns the open-pixel handler. producer may be nil,
// open events are then written to the store only.
func NewTrackingHandler(recipientRepo repo.RecipientRepo, producer *mq.Producer) TrackingHandler {
	return &trackingHandler{
		recipientRepo: recipientRepo,
		producer:      producer,
	}
}

// OnEmailOpen records the first open of a tracked email and serves the
// pixel image. The image is returned no matter what, an invalid or unknown
// token must not be distinguishable from a valid one and a broken image in
// the email client is worse than a lost data point.
func (h *trackingHandler) OnEmailOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer httputil.ReturnImage(w, "image/png", logoPNG)

	token := r.URL.Query().Get("token")
	if token == "" {
		return
	}

	recipient, err := h.recipientRepo.GetByTrackingToken(ctx, token)
	if err != nil {
		log.Ctx(ctx).Debug().Msgf("get recipient by tracking token failed: %v", err)
		return
	}

	openTime := uint64(time.Now().Unix())

	firstOpen, err := h.recipientRepo.MarkOpened(ctx, recipient.GetID(), openTime)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("mark recipient opened failed: %v, recipient_id: %v", err, recipient.GetID())
		return
	}
	if !firstOpen {
		return
	}

	if h.producer == nil {
		return
	}

	if err := h.producer.SendMessage(&mq.Message{
		Payload: mq.PayloadEmailOpened,
		Key:     recipient.GetTrackingToken(),
		Body: &mq.EmailOpened{
			CampaignID:  goutil.Uint64(recipient.GetCampaignID()),
			RecipientID: goutil.Uint64(recipient.GetID()),
			OpenTime:    goutil.Uint64(openTime),
		},
	}); err != nil {
		log.Ctx(ctx).Error().Msgf("send email opened event failed: %v, recipient_id: %v", err, recipient.GetID())
	}
}
