package client

import (
	"fmt"

	"github.com/spf13/cobra"

	xclient "github.com/rzbill/xstream/pkg/client"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewStreamCommands constructs the xadd, xrange, xlen, xread and streams
// commands.
func NewStreamCommands(baseURL BaseURLFunc) []*cobra.Command {
	return []*cobra.Command{
		newXAddCommand(baseURL),
		newXRangeCommand(baseURL),
		newXLenCommand(baseURL),
		newXReadCommand(baseURL),
		newStreamsCommand(baseURL),
	}
}

// newXAddCommand constructs the `xadd` command.
func newXAddCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xadd <stream> [field=value ...]",
		Short: "Append an entry to a stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("json")
			ms, _ := cmd.Flags().GetUint64("ms")

			var fields map[string]any
			var err error
			switch {
			case raw != "" && len(args) > 1:
				return fmt.Errorf("use either --json or field=value arguments, not both")
			case raw != "":
				fields, err = decodeFieldsJSON(raw)
			default:
				fields, err = parseFieldArgs(args[1:])
			}
			if err != nil {
				return err
			}

			c, err := newClient(baseURL)
			if err != nil {
				return err
			}
			newID, err := c.XAddAt(cmd.Context(), args[0], fields, ms)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), newID.String())
			return nil
		},
	}
	cmd.Flags().String("json", "", "Fields as a JSON object")
	cmd.Flags().Uint64("ms", 0, "Millisecond timestamp to generate the ID from (default: server clock)")
	return cmd
}

// newXRangeCommand constructs the `xrange` command.
func newXRangeCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xrange <stream>",
		Short: "List entries of a stream in ID order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			filter, _ := cmd.Flags().GetString("filter")

			c, err := newClient(baseURL)
			if err != nil {
				return err
			}
			entries, err := c.XRangeWith(cmd.Context(), args[0], xclient.RangeOptions{
				Count: count, Start: start, End: end, Filter: filter,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().Int("count", 10, "Maximum number of entries")
	cmd.Flags().String("start", "", "First ID (inclusive); - for the beginning")
	cmd.Flags().String("end", "", "Last ID (inclusive); + for the end")
	cmd.Flags().String("filter", "", "CEL filter, e.g. 'fields.speed > 30.0'")
	return cmd
}

// newXLenCommand constructs the `xlen` command.
func newXLenCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "xlen <stream>",
		Short: "Print the number of entries in a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(baseURL)
			if err != nil {
				return err
			}
			n, err := c.XLen(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

// newXReadCommand constructs the `xread` command.
func newXReadCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xread <stream> <id> [<stream> <id> ...]",
		Short: "Read entries after the given IDs ($ = only newer than now)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected stream/id pairs, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			streams := make([]string, 0, len(args)/2)
			ids := make([]string, 0, len(args)/2)
			for i := 0; i < len(args); i += 2 {
				streams = append(streams, args[i])
				ids = append(ids, args[i+1])
			}

			c, err := newClient(baseURL)
			if err != nil {
				return err
			}
			res, err := c.XRead(cmd.Context(), streams, ids, count)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Int("count", 10, "Maximum number of entries per stream")
	return cmd
}

// newStreamsCommand constructs the `streams` command.
func newStreamsCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "streams",
		Short: "List stream names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(baseURL)
			if err != nil {
				return err
			}
			names, err := c.Streams(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
