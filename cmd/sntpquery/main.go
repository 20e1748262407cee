// Command sntpquery is a small demonstration CLI around the sntp engine:
// it queries one configured server and prints the resulting offset,
// round trip, and stratum.
package main

import "github.com/coriolis-ntp/sntp/cmd/sntpquery/cmd"

func main() {
	cmd.Execute()
}
