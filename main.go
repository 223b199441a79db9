package main

import "clsh-backend/cmd"

func main() {
	cmd.Run()
}
