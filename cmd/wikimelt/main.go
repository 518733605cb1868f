package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/tsawler/wikimelt/internal/cli"
)

func main() {
	cli.Execute()
}
