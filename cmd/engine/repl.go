package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/harrison/sqlengine/logger"
	"github.com/harrison/sqlengine/storage"
	"github.com/spf13/cobra"
)

func newExecCommand(flags *rootFlags) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Execute a single SQL statement and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openEngine(flags)
			if err != nil {
				return err
			}
			defer db.Close()

			console := logger.NewConsoleLogger(os.Stdout)
			result, err := db.Execute(args[0], token)
			if err != nil {
				console.Error(err)
				return nil
			}
			printResult(console, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "session token (required when --auth is set)")
	return cmd
}

func newReplCommand(flags *rootFlags) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read statements from stdin until exit/quit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openEngine(flags)
			if err != nil {
				return err
			}
			defer db.Close()

			console := logger.NewConsoleLogger(os.Stdout)
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprint(os.Stdout, "> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "--") {
					fmt.Fprint(os.Stdout, "> ")
					continue
				}
				lower := strings.ToLower(line)
				if lower == "exit" || lower == "quit" {
					return nil
				}
				for _, stmt := range splitStatements(line) {
					result, err := db.Execute(stmt, token)
					if err != nil {
						console.Error(err)
						continue
					}
					printResult(console, result)
				}
				fmt.Fprint(os.Stdout, "> ")
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "session token (required when --auth is set)")
	return cmd
}

func newRegisterUserCommand(flags *rootFlags) *cobra.Command {
	var username, password, email string
	var admin bool

	cmd := &cobra.Command{
		Use:   "register-user",
		Short: "Register a new user (requires --auth)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openEngine(flags)
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := db.RegisterUser(username, password, email, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "registered user %q with id %d\n", username, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin privileges")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCommand(flags *rootFlags) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openEngine(flags)
			if err != nil {
				return err
			}
			defer db.Close()

			token, err := db.Login(username, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

// printResult renders an engine.Execute result: row sequences for SELECT,
// an affected-row count otherwise.
func printResult(console *logger.ConsoleLogger, result interface{}) {
	switch v := result.(type) {
	case int:
		console.RowCount(v)
	case []storage.ResultRow:
		for _, row := range v {
			parts := make([]string, len(row))
			for i, f := range row {
				parts[i] = fmt.Sprintf("%s=%v", f.Name, f.Value.Interface())
			}
			fmt.Fprintln(os.Stdout, strings.Join(parts, ", "))
		}
		if len(v) == 0 {
			fmt.Fprintln(os.Stdout, "(0 rows)")
		}
	default:
		fmt.Fprintln(os.Stdout, v)
	}
}

// splitStatements splits line on top-level ';' respecting single-quoted
// strings, per spec §6's note on host-side multi-statement splitting.
// Empty segments (a trailing ';' or blank input) are dropped.
func splitStatements(line string) []string {
	var stmts []string
	var cur strings.Builder
	inString := false

	for _, r := range line {
		switch r {
		case '\'':
			inString = !inString
			cur.WriteRune(r)
		case ';':
			if inString {
				cur.WriteRune(r)
				continue
			}
			if s := strings.TrimSpace(cur.String()); s != "" {
				stmts = append(stmts, s)
			}
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}
