package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwalimu/alama/core"
	"github.com/mwalimu/alama/storage/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config

	// mockable
	createIfNotExistFunc func(conf *core.Config) error
	openFunc             func(conf *core.Config) (*sql.DB, error)
	migrateFunc          func(db *sql.DB) error
}

func newCommandLine(conf *core.Config) *commandLine {
	return &commandLine{
		conf:                 conf,
		createIfNotExistFunc: database.CreateIfNotExist,
		openFunc:             database.Open,
		migrateFunc:          database.Migrate,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the application database and user if missing")
	fmt.Println("  migrate  - run pending database migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "createdb":
		return cli.createDB()
	case "migrate":
		return cli.migrate()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) createDB() error {
	return cli.createIfNotExistFunc(cli.conf)
}

func (cli *commandLine) migrate() error {
	db, err := cli.openFunc(cli.conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return cli.migrateFunc(db)
}
