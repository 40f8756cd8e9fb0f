// movie-service/cmd/movieservice/probe.go
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"movie-service/internal/config"
	grpcServer "movie-service/internal/grpc"
	"movie-service/internal/logging"
)

func defaultGRPCAddr() string {
	port := os.Getenv("GRPC_PORT")
	if port == "" {
		port = config.DefaultGRPCPort
	}
	return "localhost:" + port
}

func probeClient(addr string) (*grpcServer.MovieClient, error) {
	return grpcServer.NewMovieClient(addr, logging.New(os.Stderr, slog.LevelWarn))
}

func healthcheckCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Exit 0 when the running service reports SERVING",
		Long:  `Query the gRPC health service of a running movieservice. Suitable for a container HEALTHCHECK.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := probeClient(addr)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Check(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "SERVING")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultGRPCAddr(), "gRPC address of the service")
	return cmd
}

func lookupCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "lookup <id>",
		Short: "Print a movie record fetched over gRPC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := probeClient(addr)
			if err != nil {
				return err
			}
			defer client.Close()

			info, err := client.GetMovieInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultGRPCAddr(), "gRPC address of the service")
	return cmd
}
