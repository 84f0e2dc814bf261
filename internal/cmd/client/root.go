package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command holding the stream commands.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "xstream",
		Short: "xstream client commands",
	}
	for _, c := range NewStreamCommands(baseURL) {
		root.AddCommand(c)
	}
	return root
}
