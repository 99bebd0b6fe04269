package main

import (
	"Impostor/cli"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// @title Impostor API
// @version 1.0
// @description Gin server for the Impostor word party game
// @BasePath /
func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()
	cobra.CheckErr(cli.NewRootCmd().Execute())
}
