package main

import (
	"os"

	"github.com/MrJamesThe3rd/ledger/cmd/ledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
