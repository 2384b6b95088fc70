package main

import "github.com/katesim/explore-events/cmd/stats/cmd"

func main() {
	cmd.Execute()
}
