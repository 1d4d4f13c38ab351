package main

import "github.com/relloyd/stageload/cmd"

func main() {
	cmd.Execute()
}
