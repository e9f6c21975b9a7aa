package main

import (
	"context"
	"log"
	"os"

	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/user"
	mongodb "github.com/shikshaconnect/shiksha/storage/database/mongo"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := mongodb.Open(conf)
	errAndDie(err)
	defer func() {
		errAndDie(mongodb.Close(context.Background(), db))
	}()

	// start CLI
	cli := commandLine{
		usrSvc: user.NewService(mongodb.NewUserRepository(db), conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
