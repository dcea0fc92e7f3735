package main

import (
	"context"
	"flag"

	"pvedeploy/cmd/controller/wire"
	"pvedeploy/pkg/config"
	"pvedeploy/pkg/log"

	"go.uber.org/zap"
)

func main() {
	var envConf = flag.String("conf", "config/local.yml", "config path, eg: -conf ./config/local.yml")
	flag.Parse()
	conf := config.NewConfig(*envConf)

	logger := log.NewLog(conf)

	app, cleanup, err := wire.NewWire(conf, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()
	logger.Info("controller start",
		zap.Duration("poll_interval", conf.GetDuration("controller.poll_interval")),
		zap.Duration("resync_period", conf.GetDuration("controller.resync_period")))
	if err = app.Run(context.Background()); err != nil {
		panic(err)
	}
}
