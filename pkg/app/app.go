package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pvedeploy/pkg/server"
)

type App struct {
	name    string
	servers []server.Server
}

type Option func(a *App)

func NewApp(opts ...Option) *App {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func WithServer(servers ...server.Server) Option {
	return func(a *App) {
		a.servers = servers
	}
}

func WithName(name string) Option {
	return func(a *App) {
		a.name = name
	}
}

func (a *App) Run(ctx context.Context) error {
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(ctx)
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for _, srv := range a.servers {
		go func(srv server.Server) {
			if err := srv.Start(ctx); err != nil {
				log.Printf("[%s] server start err: %v", a.name, err)
			}
		}(srv)
	}

	select {
	case <-signals:
		log.Printf("[%s] received termination signal", a.name)
	case <-ctx.Done():
		log.Printf("[%s] context canceled", a.name)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	for _, srv := range a.servers {
		if err := srv.Stop(stopCtx); err != nil {
			log.Printf("[%s] server stop err: %v", a.name, err)
		}
	}
	return nil
}
