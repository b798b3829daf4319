package main

import (
	"os"

	legalqacmder "github.com/papercomputeco/legalqa/cmd/legalqa"
)

func main() {
	cmd := legalqacmder.NewLegalQACmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
