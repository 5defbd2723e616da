package main

import "github.com/MeKo-Tech/voterroll/cmd/voterroll/cmd"

func main() {
	cmd.Execute()
}
