package main

import (
	"os"

	servecmder "github.com/papercomputeco/legalqa/cmd/legalqa/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "legalqaapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
