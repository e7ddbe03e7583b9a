// Command mmusim resolves and replays address translations against memory
// images.
package main

import "github.com/sarchlab/mmusim/mmusim/cmd"

func main() {
	cmd.Execute()
}
