package main

import "github.com/spf13/cobra"

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the series state or its SQL mirror",
	}
	cmd.AddCommand(queryCharactersCmd())
	cmd.AddCommand(queryThreadsCmd())
	cmd.AddCommand(queryElementsCmd())
	cmd.AddCommand(querySQLCmd())
	return cmd
}
