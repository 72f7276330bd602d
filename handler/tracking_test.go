package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aif/entity"
	"aif/pkg/goutil"
)

func openPixel(t *testing.T, h TrackingHandler, token string) *httptest.ResponseRecorder {
	t.Helper()

	target := "/api/v1/on_email_open"
	if token != "" {
		target += "?token=" + token
	}

	w := httptest.NewRecorder()
	h.OnEmailOpen(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestOnEmailOpenMarksFirstOpen(t *testing.T) {
	recipientRepo := new(mockRecipientRepo)
	recipientRepo.created = []*entity.Recipient{
		{
			ID:            goutil.Uint64(1),
			CampaignID:    goutil.Uint64(9),
			TrackingToken: goutil.String("tok-1"),
			SentStatus:    entity.SentStatusSent,
		},
	}

	h := NewTrackingHandler(recipientRepo, nil)

	w := openPixel(t, h, "tok-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())

	require.NotNil(t, recipientRepo.created[0].OpenTime)
	firstOpenTime := *recipientRepo.created[0].OpenTime

	// a second open keeps the original open time
	w = openPixel(t, h, "tok-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, firstOpenTime, *recipientRepo.created[0].OpenTime)
}

func TestOnEmailOpenUnknownTokenStillServesImage(t *testing.T) {
	h := NewTrackingHandler(new(mockRecipientRepo), nil)

	for _, token := range []string{"", "bogus"} {
		w := openPixel(t, h, token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.NotEmpty(t, w.Body.Bytes())
	}
}
