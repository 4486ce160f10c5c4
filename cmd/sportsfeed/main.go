package main

import (
	"sportsfeed/cmd/cmd"
	"sportsfeed/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
