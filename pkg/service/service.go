package service

import (
	"os"
	"os/signal"
	"syscall"
)

// Service is a long-running process. Start is expected to return after
// kicking off its work; Run blocks until SIGINT/SIGTERM, then calls Stop.
type Service interface {
	Init() error
	Start() error
	Stop() error
}

func Run(s Service) error {
	if err := s.Init(); err != nil {
		return err
	}

	if err := s.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.Stop()
}
