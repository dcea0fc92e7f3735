package main

import (
	"context"
	"flag"

	"pvedeploy/cmd/migration/wire"
	"pvedeploy/pkg/config"
	"pvedeploy/pkg/log"
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
	if err = app.Run(context.Background()); err != nil {
		panic(err)
	}
}
