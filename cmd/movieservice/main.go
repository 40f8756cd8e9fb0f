// movie-service/cmd/movieservice/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "movieservice",
		Short: "Movie record gateway",
		Long: `movieservice serves CRUD for movie records over HTTP at /api/movies and a
lookup API over gRPC, backed by MongoDB, PostgreSQL or an in-memory store.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(healthcheckCmd())
	rootCmd.AddCommand(lookupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
