package main

import (
	"os"
	_ "time/tzdata"

	"github.com/wonny/energyls/cmd/quant/commands"
)

// main is the entry point for the energyls CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/quant [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
