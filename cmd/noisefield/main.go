package main

import "github.com/MeKo-Tech/noisefield/internal/cmd"

func main() {
	cmd.Execute()
}
