package main

import "github.com/katesim/explore-events/cmd/server/cmd"

func main() {
	cmd.Execute()
}
