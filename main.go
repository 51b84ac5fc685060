package main

import "github.com/iksnae/taskchat/cmd"

func main() {
	cmd.Execute()
}
