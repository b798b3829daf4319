// Package utils holds small string and build helpers shared by the CLI and
// the API.
package utils

// Build information, overridden at link time with
// -ldflags "-X github.com/papercomputeco/legalqa/pkg/utils.Version=...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
