package main

import "github.com/ridoystarlord/querycanvas/cmd"

func main() {
	cmd.Execute()
}
