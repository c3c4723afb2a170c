package main

import "github.com/nextlevelbuilder/zappy/cmd"

func main() {
	cmd.Execute()
}
