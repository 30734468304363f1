// cmd/tenderec/main.go
package main

import (
	"fmt"
	"io"
	"os"

	"tenderec/internal/common/config"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := run(os.Stdin, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes one command line and releases whatever the command opened.
func run(in io.Reader, out io.Writer, args []string) error {
	c := &cli{in: in, out: out}
	defer c.close()

	rootCmd := newRootCmd(c)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// cli holds the flags shared by every command and the app they build.
type cli struct {
	configPath string
	company    string
	jsonOut    bool
	in         io.Reader
	out        io.Writer
	app        *app
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tenderec",
		Short:         "Browse, rate and swipe public tender recommendations",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
	}
	rootCmd.SetIn(c.in)
	rootCmd.SetOut(c.out)

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.company, "company", "", "company name (default: company.default_name)")
	rootCmd.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "output as JSON")

	rootCmd.AddCommand(companyCmd(c))
	rootCmd.AddCommand(recommendCmd(c))
	rootCmd.AddCommand(feedbackCmd(c))
	rootCmd.AddCommand(deckCmd(c))
	rootCmd.AddCommand(likedCmd(c))
	rootCmd.AddCommand(tenderCmd(c))
	rootCmd.AddCommand(askCmd(c))

	return rootCmd
}

func (c *cli) open(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFromFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, c.in, c.out)
	if err != nil {
		return err
	}
	a.jsonOut = c.jsonOut
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

// companyName resolves the --company flag against the configured default.
func (c *cli) companyName() string {
	if c.company != "" {
		return c.company
	}
	return c.app.service.DefaultCompany()
}
