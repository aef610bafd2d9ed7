package main

import "github.com/Tiliavir/clicktime-assistant/cmd"

func main() {
	cmd.Execute()
}
