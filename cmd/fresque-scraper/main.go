package main

import (
	_ "time/tzdata"

	"github.com/pfrederiksen/fresque-scraper/internal/cli"
)

func main() {
	cli.Execute()
}
