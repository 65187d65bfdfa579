package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/credauth/internal/client/cli"
	"github.com/dmitrijs2005/credauth/internal/client/config"
)

func main() {

	args := os.Args[1:]

	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background(), args); err != nil {
		log.Fatalf("%v", err)
	}

}
