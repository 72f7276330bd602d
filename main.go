package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"aif/config"
	"aif/dep"
	"aif/handler"
	"aif/middleware"
	"aif/pkg/logutil"
	"aif/pkg/mq"
	"aif/pkg/router"
	"aif/pkg/service"
	"aif/repo"
)

type server struct {
	ctx context.Context
	opt *config.Option
	cfg *config.Config

	baseRepo        repo.BaseRepo
	campaignRepo    repo.CampaignRepo
	recipientRepo   repo.RecipientRepo
	unsubscribeRepo repo.UnsubscribeRepo
	userRepo        repo.UserRepo
	waitlistRepo    repo.WaitlistRepo
	sessionRepo     repo.SessionRepo
	adminRepo       repo.AdminRepo
	settingRepo     repo.SettingRepo

	emailService dep.EmailService
	producer     *mq.Producer

	// api handlers
	campaignHandler    handler.CampaignHandler
	cronHandler        handler.CronHandler
	unsubscribeHandler handler.UnsubscribeHandler
	trackingHandler    handler.TrackingHandler
}

func main() {
	s := new(server)
	if err := service.Run(s); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

func (s *server) Init() error {
	opt := config.NewOptions()

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		opt.LogLevel = logLevel
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		opt.ConfigPath = configPath
	}

	if serverPort := os.Getenv("PORT"); serverPort != "" {
		if port, err := strconv.Atoi(serverPort); err == nil {
			opt.Port = port
		}
	}

	s.opt = opt

	return nil
}

func (s *server) Start() error {
	var err error

	// ====== init logger ===== //

	s.ctx = logutil.InitZeroLog(context.Background(), s.opt.LogLevel)

	// ===== init config ===== //

	s.cfg = config.NewConfig()
	if err = s.cfg.Load(s.ctx, s.opt.ConfigPath); err != nil {
		log.Ctx(s.ctx).Error().Msgf("load config failed, err: %v", err)
		return err
	}

	// ===== init repos ===== //

	s.baseRepo, err = repo.NewBaseRepo(s.ctx, s.cfg.MetadataDB)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init base repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.baseRepo != nil {
			if err := s.baseRepo.Close(s.ctx); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close base repo failed, err: %v", err)
				return
			}
		}
	}()

	s.campaignRepo = repo.NewCampaignRepo(s.ctx, s.baseRepo)
	s.recipientRepo = repo.NewRecipientRepo(s.ctx, s.baseRepo)
	s.unsubscribeRepo = repo.NewUnsubscribeRepo(s.ctx, s.baseRepo)
	s.userRepo = repo.NewUserRepo(s.ctx, s.baseRepo)
	s.waitlistRepo = repo.NewWaitlistRepo(s.ctx, s.baseRepo)
	s.sessionRepo = repo.NewSessionRepo(s.ctx, s.baseRepo)
	s.adminRepo = repo.NewAdminRepo(s.ctx, s.baseRepo, repo.NewBaseCache(s.ctx, 5*time.Minute))
	s.settingRepo = repo.NewSettingRepo(s.ctx, s.baseRepo)

	// ===== init email service ===== //

	s.emailService, err = dep.NewEmailService(s.ctx, s.cfg.Brevo)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init email service failed, err: %v", err)
		return err
	}

	// ===== init producer ===== //

	if s.cfg.Kafka.Enabled {
		s.producer, err = mq.NewProducer(s.ctx, mq.ProducerConfig{
			Brokers: s.cfg.Kafka.Brokers,
			Topics: map[uint32]string{
				uint32(mq.PayloadEmailOpened): s.cfg.Kafka.OpenTopic,
			},
		})
		if err != nil {
			log.Ctx(s.ctx).Error().Msgf("init producer failed, err: %v", err)
			return err
		}
	}

	// ===== init handlers ===== //

	resolver := handler.NewResolver(s.userRepo, s.waitlistRepo, s.unsubscribeRepo)

	s.campaignHandler = handler.NewCampaignHandler(s.cfg, s.campaignRepo, s.recipientRepo,
		s.settingRepo, s.emailService, resolver)
	s.cronHandler = handler.NewCronHandler(s.campaignRepo, resolver, s.campaignHandler)
	s.unsubscribeHandler = handler.NewUnsubscribeHandler(s.unsubscribeRepo)
	s.trackingHandler = handler.NewTrackingHandler(s.recipientRepo, s.producer)

	// ===== start server ===== //

	go func() {
		addr := fmt.Sprintf(":%d", s.opt.Port)

		log.Info().Msgf("starting HTTP server at %s", addr)

		c := cors.New(cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", "X-Session-ID", "Authorization"},
		})

		httpServer := &http.Server{
			BaseContext: func(_ net.Listener) context.Context {
				return s.ctx
			},
			Addr:    addr,
			Handler: middleware.Log(c.Handler(s.registerRoutes())),
		}
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fail to start HTTP server, err: %v", err)
		}
	}()

	return nil
}

func (s *server) Stop() error {
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close producer failed, err: %v", err)
			return err
		}
	}

	if s.emailService != nil {
		if err := s.emailService.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close email service failed, err: %v", err)
			return err
		}
	}

	if s.baseRepo != nil {
		if err := s.baseRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close base repo failed, err: %v", err)
			return err
		}
	}

	return nil
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct{}

func (s *server) registerRoutes() http.Handler {
	r := &router.HttpRouter{
		Router: mux.NewRouter(),
	}

	var (
		sessionMiddleware = router.NewSessionMiddleware(s.userRepo, s.sessionRepo, s.adminRepo)
		bearerMiddleware  = router.NewBearerMiddleware(s.cfg.CronSecret)
	)

	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathHealthCheck,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(HealthCheckRequest),
			Res: new(HealthCheckResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return nil
			},
		},
	})

	// send_campaign
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathSendCampaign,
		Method:      http.MethodPost,
		IsAdmin:     true,
		Middlewares: []router.Middleware{sessionMiddleware},
		Handler: router.Handler{
			Req: new(handler.SendCampaignRequest),
			Res: new(handler.SendCampaignResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.SendCampaign(ctx, req.(*handler.SendCampaignRequest), res.(*handler.SendCampaignResponse))
			},
		},
	})

	// get_campaign
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathGetCampaign,
		Method:      http.MethodGet,
		IsAdmin:     true,
		Middlewares: []router.Middleware{sessionMiddleware},
		Handler: router.Handler{
			Req: new(handler.GetCampaignRequest),
			Res: new(handler.GetCampaignResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.GetCampaign(ctx, req.(*handler.GetCampaignRequest), res.(*handler.GetCampaignResponse))
			},
		},
	})

	// get_campaigns
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathGetCampaigns,
		Method:      http.MethodGet,
		IsAdmin:     true,
		Middlewares: []router.Middleware{sessionMiddleware},
		Handler: router.Handler{
			Req: new(handler.GetCampaignsRequest),
			Res: new(handler.GetCampaignsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.GetCampaigns(ctx, req.(*handler.GetCampaignsRequest), res.(*handler.GetCampaignsResponse))
			},
		},
	})

	// add_unsubscribe
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathAddUnsubscribe,
		Method:      http.MethodPost,
		IsAdmin:     true,
		Middlewares: []router.Middleware{sessionMiddleware},
		Handler: router.Handler{
			Req: new(handler.AddUnsubscribeRequest),
			Res: new(handler.AddUnsubscribeResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.unsubscribeHandler.AddUnsubscribe(ctx, req.(*handler.AddUnsubscribeRequest), res.(*handler.AddUnsubscribeResponse))
			},
		},
	})

	// get_unsubscribes
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathGetUnsubscribes,
		Method:      http.MethodGet,
		IsAdmin:     true,
		Middlewares: []router.Middleware{sessionMiddleware},
		Handler: router.Handler{
			Req: new(handler.GetUnsubscribesRequest),
			Res: new(handler.GetUnsubscribesResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.unsubscribeHandler.GetUnsubscribes(ctx, req.(*handler.GetUnsubscribesRequest), res.(*handler.GetUnsubscribesResponse))
			},
		},
	})

	// run_scheduled_campaigns
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathRunScheduledCampaigns,
		Method:      http.MethodGet,
		Middlewares: []router.Middleware{bearerMiddleware},
		Handler: router.Handler{
			Req: new(handler.RunScheduledCampaignsRequest),
			Res: new(handler.RunScheduledCampaignsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.cronHandler.RunScheduledCampaigns(ctx, req.(*handler.RunScheduledCampaignsRequest), res.(*handler.RunScheduledCampaignsResponse))
			},
		},
	})

	// on_email_open
	r.RegisterRawRoute(http.MethodGet, config.PathOnEmailOpen, s.trackingHandler.OnEmailOpen)

	return r
}
