package main

import "github.com/user/linkstitcher/cmd"

func main() {
	cmd.Execute()
}
