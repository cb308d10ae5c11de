package main

import (
	"os"

	mousetroncmder "github.com/aircode610/MouseTron/cmd/mousetron"
)

func main() {
	cmd := mousetroncmder.NewMouseTronCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
