// main is the entry point of the ciweather CLI.
package main

import (
	"os"

	"github.com/huangsam/ciweather/cmd"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()

	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()

	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
