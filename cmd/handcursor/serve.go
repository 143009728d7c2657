package main

import (
	"log"

	cli "github.com/spf13/cobra"

	"github.com/ayusman/handcursor/internal/server"
)

var serveCmd = &cli.Command{
	Use:   "serve",
	Short: "Serve recorded sessions and settings over HTTP",
	Args:  cli.NoArgs,
	RunE: func(cmd *cli.Command, args []string) error {
		addr := flags.addr
		if addr == "" {
			addr = ":8080"
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		webDir := findWebDir()
		if webDir != "" {
			log.Printf("Serving static files from: %s", webDir)
		}

		srv := server.New(server.Config{StaticDir: webDir, Store: st})
		log.Printf("Starting server on %s", addr)
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
