// pipesh is a small interactive Unix shell with pipelines, I/O redirection,
// background jobs and a hard timeout on foreground commands.
package main

import "pipesh/cmd"

func main() {
	cmd.Execute()
}
