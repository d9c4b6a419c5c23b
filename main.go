package main

import "github.com/fbz-tec/vexport/cmd"

func main() {
	cmd.Execute()
}
