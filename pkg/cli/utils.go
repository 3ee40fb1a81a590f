package cli

import (
	"slices"

	"github.com/urfave/cli/v3"
)

// joinFlags combines per-concern flag slices into one command flag set
func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	return slices.Concat(flags...)
}
