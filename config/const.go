package config

const (
	PathHealthCheck           = "/"
	PathSendCampaign          = "/send_campaign"
	PathGetCampaign           = "/get_campaign"
	PathGetCampaigns          = "/get_campaigns"
	PathAddUnsubscribe        = "/add_unsubscribe"
	PathGetUnsubscribes       = "/get_unsubscribes"
	PathRunScheduledCampaigns = "/run_scheduled_campaigns"
	PathOnEmailOpen           = "/on_email_open"
)

const (
	DefaultPort   = 9090
	LogLevelDebug = "DEBUG"
)

const (
	DefaultBatchSize    = 50
	DefaultBatchDelayMS = 1000
)
