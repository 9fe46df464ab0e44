package main

import (
	"os"

	"github.com/JamesFein/langchain-rag-chat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
