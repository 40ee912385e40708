package main

// emailnorm normalizes email addresses for deduplication.

import (
	"os"

	"github.com/gitshopapp/emailnorm/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
