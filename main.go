// Command go-depsolve resolves dependency closures across a universe of
// source and binary packages spread over priority-ordered repositories.
package main

import "go-depsolve/cmd"

func main() {
	cmd.Execute()
}
