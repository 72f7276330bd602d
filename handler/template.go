package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"aif/config"
)

var (
	//go:embed template/*
	content embed.FS

	wrapperTmpl *template.Template

	logoPNG []byte
)

func init() {
	b, err := content.ReadFile("template/wrapper.html")
	if err != nil {
		panic(fmt.Errorf("read template wrapper.html: %v", err))
	}

	wrapperTmpl, err = template.New("wrapper").Parse(string(b))
	if err != nil {
		panic(fmt.Errorf("parse template wrapper.html: %v", err))
	}

	logoPNG, err = content.ReadFile("template/logo.png")
	if err != nil {
		panic(fmt.Errorf("read template logo.png: %v", err))
	}
}

type wrapperData struct {
	Body     template.HTML
	PixelURL string
}

// RenderCampaignHtml wraps the campaign body in the shared header/footer and
// injects the open-tracking pixel keyed by the recipient's token.
func RenderCampaignHtml(cfg config.Tracking, bodyHtml, trackingToken string) (string, error) {
	var buf bytes.Buffer

	if err := wrapperTmpl.Execute(&buf, &wrapperData{
		Body:     template.HTML(bodyHtml),
		PixelURL: PixelURL(cfg, trackingToken),
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func PixelURL(cfg config.Tracking, trackingToken string) string {
	return fmt.Sprintf("%s/api/v1%s?token=%s",
		cfg.PixelBaseURL, config.PathOnEmailOpen, url.QueryEscape(trackingToken))
}
