package main

import (
	"database/sql"
	"testing"

	"github.com/mwalimu/alama/core"
)

type cliTest struct {
	name        string
	args        []string // without program name
	wantErr     error
	wantCreated bool
	wantMigrate bool
}

func Test_commandLine_run(t *testing.T) {
	var created, migrated bool
	cli := &commandLine{
		conf:                 core.Conf,
		createIfNotExistFunc: func(conf *core.Config) error { created = true; return nil },
		openFunc:             func(conf *core.Config) (*sql.DB, error) { return sql.Open("postgres", "") },
		migrateFunc:          func(db *sql.DB) error { migrated = true; return nil },
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"admin"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"admin", "lol"}, wantErr: errHelp},
		{name: "createdb", args: []string{"admin", "createdb"}, wantCreated: true},
		{name: "migrate", args: []string{"admin", "migrate"}, wantMigrate: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, migrated = false, false

			err := cli.run(tt.args)
			if err != tt.wantErr {
				t.Fatalf("run() error = %v; want %v", err, tt.wantErr)
			}
			if created != tt.wantCreated {
				t.Errorf("run() created = %v; want %v", created, tt.wantCreated)
			}
			if migrated != tt.wantMigrate {
				t.Errorf("run() migrated = %v; want %v", migrated, tt.wantMigrate)
			}
		})
	}
}
