// Command gen3utils validates and manages Gen3 data commons configuration.
package main

import "gen3utils/internal/command"

func main() {
	command.Execute()
}
