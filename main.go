package main

import "barhop-backend/cmd"

func main() {
	cmd.Run()
}
