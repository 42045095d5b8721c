package main

import (
	"context"
	"os"

	"pkt.systems/pslog"

	"github.com/emiliopalmerini/mexp/internal/cli"
)

func main() {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx := pslog.ContextWithLogger(context.Background(), logger)

	if err := cli.Execute(ctx); err != nil {
		logger.With("err", err).Error("mexp command failed")
		os.Exit(1)
	}
}
