// Command adtech-emissions models the greenhouse gas emissions of digital
// advertising and serves the models over REST and gRPC.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
