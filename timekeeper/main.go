// Command timekeeper polls timed events from the command line.
package main

import "github.com/sarchlab/timekeeper/timekeeper/cmd"

func main() {
	cmd.Execute()
}
