package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bikeledger/internal/form"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

const formHelp = `Commands:
  models              list catalog models
  select <model>      select a model and fill brand, built year and price
  brand <brand>       set the brand
  built <year>        set the built year
  year <year>         set the year you bought or owned the bike
  price <price>       set the price
  show                show the form
  add                 submit the form
  list                refresh and show recorded bikes
  help                show this help
  quit                leave the form`

func newFormCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Fill the purchase form interactively",
		Long: `Form reads commands line by line from standard input and drives the
purchase form: select a model, set the year, adjust the price and add.

` + formHelp,
		Args: cobra.NoArgs,
		RunE: runForm,
	}
}

func runForm(cmd *cobra.Command, args []string) error {
	a, err := openApp(resolved)
	if err != nil {
		return err
	}
	defer a.Close()

	s := &formSession{
		ctl: a.controller(cliNotifier(cmd)),
		out: cmd.OutOrStdout(),
	}
	return s.run(cmd.InOrStdin())
}

// formSession is one interactive form. Notifications go through the
// controller's notifier; the session prints fields and tables.
type formSession struct {
	ctl *form.Controller
	out io.Writer
}

func (s *formSession) run(in io.Reader) error {
	if _, err := s.refresh(); err != nil {
		return reported(err)
	}
	printFields(s.out, s.ctl.Fields())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if !s.exec(strings.TrimSpace(scanner.Text())) {
			return nil
		}
	}
}

// exec runs one command line and reports whether the session continues.
func (s *formSession) exec(line string) bool {
	if line == "" {
		return true
	}
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "models":
		printCatalog(s.out, s.ctl.Catalog().Entries())
	case "select":
		printFields(s.out, s.ctl.SelectModel(arg))
	case "brand":
		s.ctl.SetBrand(arg)
	case "built":
		s.ctl.SetBuiltYear(arg)
	case "year":
		s.ctl.SetYear(arg)
	case "price":
		s.ctl.SetPrice(arg)
	case "show":
		printFields(s.out, s.ctl.Fields())
	case "add", "submit":
		// Failures were already reported as notifications.
		out, err := s.ctl.Submit(s.ctl.Fields())
		if err == nil {
			printEntries(s.out, out.Rows)
		}
	case "list", "refresh":
		if rows, err := s.refresh(); err == nil {
			printEntries(s.out, rows)
		}
	case "help", "?":
		fmt.Fprintln(s.out, formHelp)
	case "quit", "exit":
		return false
	default:
		fmt.Fprintf(s.out, "unknown command %q; type help\n", verb)
	}
	return true
}

func (s *formSession) refresh() ([]types.BikeEntry, error) {
	return s.ctl.Refresh()
}
