package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

type Config struct {
	MetadataDB    Postgres `json:"metadata_db"`
	Brevo         Brevo    `json:"brevo"`
	Kafka         Kafka    `json:"kafka"`
	Dispatch      Dispatch `json:"dispatch"`
	Tracking      Tracking `json:"tracking"`
	CronSecret    string   `json:"cron_secret"`
	DefaultSender Sender   `json:"default_sender"`
}

type Postgres struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

func (pg *Postgres) ToDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		pg.Host, pg.Username, pg.Password, pg.Database, pg.Port, pg.SSLMode)
}

type Brevo struct {
	APIKey string `json:"api_key"`
}

type Kafka struct {
	Enabled       bool     `json:"enabled"`
	Brokers       []string `json:"brokers"`
	OpenTopic     string   `json:"open_topic"`
	ConsumerGroup string   `json:"consumer_group"`
}

// Dispatch holds the batching knobs of the send loop. Both were hard-coded
// once; they are config now so ops can tune provider pressure without a
// deploy.
type Dispatch struct {
	BatchSize    int `json:"batch_size"`
	BatchDelayMS int `json:"batch_delay_ms"`
}

type Tracking struct {
	PixelBaseURL string `json:"pixel_base_url"`
}

type Sender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewConfig() *Config {
	return &Config{
		MetadataDB: Postgres{
			Username: "",
			Password: "",
			Host:     "127.0.0.1",
			Port:     5432,
			Database: "aif_db",
			SSLMode:  "disable",
		},
		Brevo: Brevo{
			APIKey: "",
		},
		Kafka: Kafka{
			Enabled:       false,
			Brokers:       []string{"127.0.0.1:9092"},
			OpenTopic:     "aif_email_opened",
			ConsumerGroup: "aif_record_opens",
		},
		Dispatch: Dispatch{
			BatchSize:    DefaultBatchSize,
			BatchDelayMS: DefaultBatchDelayMS,
		},
		Tracking: Tracking{
			PixelBaseURL: "http://127.0.0.1:9090",
		},
		CronSecret: "",
		DefaultSender: Sender{
			Email: "hello@appideasfinder.com",
			Name:  "App Ideas Finder",
		},
	}
}

func (c *Config) Load(ctx context.Context, path string) error {
	if path == "" {
		log.Ctx(ctx).Warn().Msgf("empty config file")
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Ctx(ctx).Warn().Msgf("config file does not exist, file path: %s", path)
			return nil
		}
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			log.Ctx(ctx).Error().Msgf("config file close failed, file path: %s", path)
		}
	}(f)

	p := json.NewDecoder(f)
	if err := p.Decode(&c); err != nil {
		return err
	}

	if secret := os.Getenv("CRON_SECRET"); secret != "" {
		c.CronSecret = secret
	}

	if apiKey := os.Getenv("BREVO_API_KEY"); apiKey != "" {
		c.Brevo.APIKey = apiKey
	}

	return nil
}
