package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/session"
)

func newResolveCmd(a *app) *cobra.Command {
	var symbology string

	cmd := &cobra.Command{
		Use:   "resolve <raw scan text>",
		Short: "Resolve one scan against the catalog and print the attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalog()
			if err != nil {
				return err
			}

			attempt := a.scanService(products).Process(cmd.Context(), args[0], symbology)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(attempt); err != nil {
				return err
			}
			if attempt.Resolution.Err != nil {
				return attempt.Resolution.Err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&symbology, "symbology", "", "symbology reported by the scanner")
	return cmd
}

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Interactive scan session: every stdin line is one scan",
		Long: "Reads scanner output from stdin, one scan per line, and drives a scan session.\n" +
			"Lines arriving while a scan is being resolved or its result is displayed are dropped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalog()
			if err != nil {
				return err
			}

			var haptics session.Haptics = session.NewLogHaptics(a.log)
			if a.cfg.Scanner.TerminalBellFeedback {
				haptics = session.MultiHaptics{haptics, session.NewBellHaptics(os.Stderr)}
			}

			out := cmd.OutOrStdout()
			sess := session.New(a.scanService(products), session.Options{
				Timing:   session.TimingFromConfig(a.cfg.Scanner),
				Haptics:  haptics,
				Logger:   a.log,
				Observer: printState(out),
			})
			defer sess.Close()

			return runScanLoop(cmd.InOrStdin(), out, sess)
		},
	}
}

func runScanLoop(in io.Reader, out io.Writer, sess *session.Session) error {
	sess.Focus()
	defer sess.Blur()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !sess.Scan(line, "STDIN") {
			fmt.Fprintf(out, "ignored %q (session %s)\n", line, sess.State().Phase)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	// let a final piped scan finish before the surface goes away
	sess.Wait()
	return nil
}

func printState(out io.Writer) session.Observer {
	return func(st session.State) {
		switch st.Phase {
		case session.Locked:
			fmt.Fprintln(out, st.Message)
		case session.Success:
			p := st.Product
			fmt.Fprintf(out, "%s [%s] price %s, qty %d\n", st.Message, p.SKU, p.Price.StringFixed(2), p.Quantity)
		case session.Failure:
			fmt.Fprintln(out, st.Message)
		case session.Idle:
			if st.Active && st.Product == nil {
				fmt.Fprintln(out, "ready")
			}
		}
	}
}
