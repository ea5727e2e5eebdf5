package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vibingsteamer/mcp-abap-adt/internal/mcp"
	"github.com/vibingsteamer/mcp-abap-adt/pkg/whereused"
)

var whereUsedCmd = &cobra.Command{
	Use:   "where-used NAME",
	Short: "Print the where-used list of an ABAP object",
	Long: `Run a single where-used lookup and print the result.

The declared type selects the first lookup; dictionary lookups and a code
search follow when it returns nothing. If no lookup finds usages, manual
alternatives are printed instead.

Examples:
  mcp-abap-adt where-used SBOOK --type TABLE
  mcp-abap-adt where-used ZCL_ORDERS --type CLASS --max 20
  mcp-abap-adt where-used /UI5/CL_REPOSITORY_LOAD`,
	Args: cobra.ExactArgs(1),
	RunE: runWhereUsed,
}

var (
	whereUsedType string
	whereUsedMax  int
)

var errResolutionFailed = errors.New("where-used lookup failed")

func init() {
	whereUsedCmd.Flags().StringVarP(&whereUsedType, "type", "t", "", "Object type: CLASS, INTERFACE, PROGRAM, FUNCTION, TABLE or STRUCTURE")
	whereUsedCmd.Flags().IntVarP(&whereUsedMax, "max", "m", whereused.DefaultMaxResults, "Maximum number of results")

	rootCmd.AddCommand(whereUsedCmd)
}

func runWhereUsed(cmd *cobra.Command, args []string) error {
	q, err := whereused.NewObjectQuery(args[0], whereUsedType, whereUsedMax)
	if err != nil {
		return err
	}
	if err := prepareConfig(cmd); err != nil {
		return err
	}

	logger := zap.NewNop()
	if cfg.Verbose {
		if logger, err = newLogger(true); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}
	cfg.Logger = logger

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res := server.Engine().Resolve(ctx, q)
	printResolution(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
	if res.Result.IsError {
		return errResolutionFailed
	}
	return nil
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	hitColor     = color.New(color.FgGreen)
	emptyColor   = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// printResolution writes the attempt summary to diag and the result content to out.
func printResolution(out, diag io.Writer, res *whereused.Resolution) {
	headingColor.Fprintf(diag, "Where-used %s (%s)\n", res.Query.Name, res.Query.DeclaredType)
	for i, o := range res.Outcomes {
		fmt.Fprintf(diag, "  %d. %-18s %-8s ", i+1, o.Strategy.Name, o.Strategy.RemoteObjectType)
		statusColor(o.Status).Fprint(diag, o.Status)
		if o.StatusCode != 0 {
			fmt.Fprintf(diag, " (HTTP %d)", o.StatusCode)
		}
		fmt.Fprintf(diag, " %s\n", o.Duration.Round(time.Millisecond))
	}

	for _, item := range res.Result.Content {
		if res.Result.IsError {
			errorColor.Fprintln(out, item.Text)
			continue
		}
		fmt.Fprintln(out, item.Text)
	}
}

func statusColor(s whereused.OutcomeStatus) *color.Color {
	switch s {
	case whereused.StatusHit:
		return hitColor
	case whereused.StatusEmpty:
		return emptyColor
	default:
		return errorColor
	}
}
