// cmd/cabctl/main.go
//
// cabctl – terminal client for the enquiry API.
//
// Drives the same dispatch.Form a browser uses: values are validated with
// the strict profile before anything leaves the machine, then delivered over
// HTTP or rendered as a mailto: link.
//
//	cabctl submit contact --set firstName=Asha --set lastName=Rao …
//	cabctl submit booking --strategy mailto --set …
//	cabctl health --server http://localhost:8080
//	cabctl schema booking
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
