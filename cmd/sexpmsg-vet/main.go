// sexpmsg-vet reports Message calls that sexpmsg generate would reject.
//
//	GOFLAGS=-tags=sexpmsg sexpmsg-vet ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/chazu/sexpmsg/analysis/sexpmsgcheck"
)

func main() { singlechecker.Main(sexpmsgcheck.Analyzer) }
