package main

import "github.com/kiyora/animehub/cmd"

func main() {
	cmd.Execute()
}
