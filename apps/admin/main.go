package main

import (
	"log"
	"os"

	"github.com/mwalimu/alama/core"
)

func main() {
	cli := newCommandLine(core.Conf)
	if err := cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		log.Fatalf("%+v", err)
	}
}
