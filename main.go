// Beam is a command-line client for the Beam realtime messaging platform.
package main

import "github.com/soniclabs/beamkit/cmd"

func main() {
	cmd.Execute()
}
