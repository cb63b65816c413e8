// Command server runs the ChronoFlow reminder backend.
//
// With no subcommand it serves HTTP and runs the due-event poller. See
// `server --help` for the store maintenance commands.
package main

import "github.com/sakif/chronoflow/cmd/server/cmd"

func main() {
	cmd.Execute()
}
