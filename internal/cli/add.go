package cli

import (
	"github.com/spf13/cobra"
)

type addOptions struct {
	year      string
	price     string
	brand     string
	builtYear string
}

func newAddCmd() *cobra.Command {
	var opts addOptions

	cmd := &cobra.Command{
		Use:   "add <model>",
		Short: "Record a bike purchase",
		Long: `Add selects the model, fills brand, built year and price from the catalog,
applies any overrides and submits the entry. The refreshed list is printed on
success.

Models outside the catalog need --brand, --built-year and --price.

Example:
  bikeledger add R15 --year 2023
  bikeledger add "Classic 350" --year 2021 --price 190000
  bikeledger add Scout --brand Indian --built-year 2022 --year 2024 --price 1500000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.year, "year", "", "year you bought or owned the bike (required)")
	cmd.Flags().StringVar(&opts.price, "price", "", "price paid (default: catalog price)")
	cmd.Flags().StringVar(&opts.brand, "brand", "", "brand (default: catalog brand)")
	cmd.Flags().StringVar(&opts.builtYear, "built-year", "", "year the model was built (default: catalog year)")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

func runAdd(cmd *cobra.Command, model string, opts addOptions) error {
	a, err := openApp(resolved)
	if err != nil {
		return err
	}
	defer a.Close()

	ctl := a.controller(cliNotifier(cmd))
	fields := ctl.SelectModel(model)
	fields.Year = opts.year
	if cmd.Flags().Changed("price") {
		fields.Price = opts.price
	}
	if cmd.Flags().Changed("brand") {
		fields.Brand = opts.brand
	}
	if cmd.Flags().Changed("built-year") {
		fields.BuiltYear = opts.builtYear
	}

	out, err := ctl.Submit(fields)
	if err != nil {
		return reported(err)
	}

	if flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	printEntries(cmd.OutOrStdout(), out.Rows)
	return nil
}
