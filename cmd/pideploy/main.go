// cmd/pideploy/main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"pideploy/internal/pderr"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		if code := pderr.CodeOf(err); code != "" {
			slog.Error("command failed", "code", code, "error", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
