package main

import (
	"os"

	"github.com/spec-kit/helpdesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.TicketService))
}
