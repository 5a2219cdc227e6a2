// main is the entry point for the polyscan CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"polyscan/cmd"
	"polyscan/internal/contract"
	"polyscan/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.GetManager())

	err := cmd.Execute()

	// Close any open stores and flush profiles before deciding the exit code.
	iocache.CloseStores()
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("stopping profiler", profErr)
	}

	if err != nil {
		// A failed build report has already been printed in full.
		if !errors.Is(err, cmd.ErrBuildFailed) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
