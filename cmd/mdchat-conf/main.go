package main

import (
	"os"

	"github.com/mdchat/serverconf/internal/app"
)

func main() {
	os.Exit(app.Main(os.Args))
}
