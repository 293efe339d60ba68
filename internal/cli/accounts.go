package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okColor     = color.New(color.FgGreen, color.Bold)
	labelColor  = color.New(color.FgCyan)
	closedColor = color.New(color.FgYellow)
)

func printAccount(w io.Writer, a *account.Account) {
	_, _ = labelColor.Fprint(w, "number:  ")
	_, _ = fmt.Fprintln(w, a.Number)
	_, _ = labelColor.Fprint(w, "balance: ")
	_, _ = fmt.Fprintln(w, a.Balance)
	_, _ = labelColor.Fprint(w, "status:  ")
	if a.Closed {
		_, _ = closedColor.Fprintln(w, "closed")
	} else {
		_, _ = fmt.Fprintln(w, "open")
	}
}

func parseAmount(s string) (int64, error) {
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: must be an integer", s)
	}
	return amount, nil
}

func getCmd(current func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get <number>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := current()
			ctx, cancel := s.context(cmd.Context())
			defer cancel()

			a, err := s.app.AccountService.GetAccount(ctx, args[0])
			if err != nil {
				return err
			}
			return s.print(a, func(w io.Writer) { printAccount(w, a) })
		},
	}
}

func createCmd(current func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "create <initial-amount>",
		Short: "Open an account with an initial balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			s := current()
			ctx, cancel := s.context(cmd.Context())
			defer cancel()

			a, err := s.app.AccountService.CreateAccount(ctx, amount)
			if err != nil {
				return err
			}
			return s.print(a, func(w io.Writer) {
				_, _ = okColor.Fprintln(w, "Account created")
				printAccount(w, a)
			})
		},
	}
}

func closeCmd(current func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "close <number>",
		Short: "Close an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := current()
			ctx, cancel := s.context(cmd.Context())
			defer cancel()

			a, err := s.app.AccountService.CloseAccount(ctx, args[0])
			if err != nil {
				return err
			}
			return s.print(a, func(w io.Writer) {
				_, _ = okColor.Fprintln(w, "Account closed")
				printAccount(w, a)
			})
		},
	}
}

func transferCmd(current func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <source> <destination> <amount>",
		Short: "Move funds between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			s := current()
			ctx, cancel := s.context(cmd.Context())
			defer cancel()

			res, err := s.app.AccountService.Transfer(ctx, args[0], args[1], amount)
			if err != nil {
				return err
			}
			return s.print(res, func(w io.Writer) {
				_, _ = okColor.Fprintf(w, "Transferred %d\n", amount)
				_, _ = fmt.Fprintln(w, "source:")
				printAccount(w, res.Source)
				_, _ = fmt.Fprintln(w, "destination:")
				printAccount(w, res.Destination)
			})
		},
	}
}
