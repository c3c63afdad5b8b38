// Command mocap-client streams synthetic motion-capture samples to a peer
// and logs the samples it receives back.
package main

import "os"

func main() {
	os.Exit(run(ParseFlags(os.Args[1:])))
}
