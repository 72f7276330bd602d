package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aif/config"
)

func trackingConfig() config.Tracking {
	return config.Tracking{PixelBaseURL: "https://appideasfinder.com"}
}

func TestRenderCampaignHtml(t *testing.T) {
	html, err := RenderCampaignHtml(trackingConfig(), "<p>big news</p>", "tok-123")
	require.NoError(t, err)

	// body goes in unescaped, the admin writes trusted html
	assert.Contains(t, html, "<p>big news</p>")
	assert.Contains(t, html, "https://appideasfinder.com/api/v1/on_email_open?token=tok-123")

	// pixel sits before the closing body tag
	pixelAt := strings.Index(html, "on_email_open?token=")
	bodyEndAt := strings.Index(html, "</body>")
	require.Greater(t, pixelAt, 0)
	assert.Less(t, pixelAt, bodyEndAt)
}

func TestPixelURLEscapesToken(t *testing.T) {
	u := PixelURL(trackingConfig(), "a b&c")
	assert.Equal(t, "https://appideasfinder.com/api/v1/on_email_open?token=a+b%26c", u)
}
