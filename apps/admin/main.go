package main

import (
	"log"
	"os"

	"github.com/unipress/portal/core"
	"github.com/unipress/portal/core/session"
	inmemstore "github.com/unipress/portal/storage/sessionstore/inmem"
	pgstore "github.com/unipress/portal/storage/sessionstore/postgres"
	redisstore "github.com/unipress/portal/storage/sessionstore/redis"
	"github.com/unipress/portal/upstream"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	store, closeStore, err := openStore(conf)
	errAndDie(err)
	defer closeStore()

	// start CLI
	cli := commandLine{
		store:    store,
		upstream: upstream.NewClient(conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func openStore(conf *core.Config) (session.Store, func(), error) {
	switch conf.Session.Engine {
	case "redis":
		client, err := redisstore.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(client), func() { _ = client.Close() }, nil
	case "postgres":
		db, err := pgstore.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.New(db), func() { _ = db.Close() }, nil
	default:
		return inmemstore.New(), func() {}, nil
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
