package main

import (
	"context"

	"tweetpipe/cmd/tweetpipe/commands"
	"tweetpipe/lib/configutil"
	"tweetpipe/lib/serviceutil"
	"tweetpipe/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "tweetpipe")
	if err != nil {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)
	telemetry.InitSlog(configutil.EnvBool("VERBOSE", false))

	commands.ExecuteContext(ctx)
}
