package main

import (
	"os"

	"github.com/josh-kwaku/shop-ledger/cmd/ledgerctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
