package main

import (
	"os"
	"time"

	"github.com/jpillora/overseer"

	"github.com/benedict-erwin/lokiquery/cmd"

	_ "github.com/benedict-erwin/lokiquery/http/route"
)

// main runs the gateway and the worker under overseer for zero-downtime
// restarts (SIGUSR2). Every other command runs directly.
func main() {
	if len(os.Args) < 2 {
		cmd.Execute()
		return
	}

	switch {
	case os.Args[1] == "serve":
		overseer.Run(overseer.Config{
			Program: func(state overseer.State) {
				cmd.Listener = state.Listener
				cmd.Execute()
			},
			Address:          cmd.ServeAddress(),
			RestartSignal:    overseer.SIGUSR2,
			TerminateTimeout: 30 * time.Second,
		})
	case os.Args[1] == "worker" && len(os.Args) >= 3 && os.Args[2] == "start":
		overseer.Run(overseer.Config{
			Program: func(state overseer.State) {
				cmd.Execute()
			},
			RestartSignal:    overseer.SIGUSR2,
			TerminateTimeout: 30 * time.Second,
		})
	default:
		cmd.Execute()
	}
}
