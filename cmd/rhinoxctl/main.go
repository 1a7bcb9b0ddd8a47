package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rhinoxpay/rhinoxcore/config"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/drivers/postgres"
	"github.com/rhinoxpay/rhinoxcore/database/drivers/sqlite3"
	"github.com/rhinoxpay/rhinoxcore/engine"
	"github.com/rhinoxpay/rhinoxcore/log"
	"github.com/rhinoxpay/rhinoxcore/money"
)

var (
	configPath string
	dataPath   string
	timeout    time.Duration
)

func jsonOutput(in interface{}) {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return
	}
	fmt.Println(string(j))
}

// setup loads configuration, connects the store and builds the engine without
// starting the background subsystems
func setup(c *cli.Context) (*engine.Engine, context.Context, context.CancelFunc, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.JSON); err != nil {
		return nil, nil, nil, err
	}

	dbCfg := cfg.DatabaseConfig()
	var instance *database.Instance
	switch dbCfg.Driver {
	case database.DBPostgres:
		instance, err = postgres.Connect(dbCfg)
	case database.DBSQLite3:
		instance, err = sqlite3.Connect(dbCfg, dataPath)
	default:
		err = fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	e, err := engine.New(cfg, instance)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	return e, ctx, cancel, nil
}

var schemaCommand = &cli.Command{
	Name:  "schema",
	Usage: "manage the database schema",
	Subcommands: []*cli.Command{
		{
			Name:  "init",
			Usage: "create any missing tables and indexes",
			Action: func(c *cli.Context) error {
				e, ctx, cancel, err := setup(c)
				if err != nil {
					return err
				}
				defer cancel()
				if err := e.DB.Setup(ctx); err != nil {
					return err
				}
				fmt.Println("schema up to date")
				return nil
			},
		},
	},
}

var rateCommand = &cli.Command{
	Name:  "rate",
	Usage: "administer exchange rates",
	Subcommands: []*cli.Command{
		{
			Name:      "set",
			Usage:     "set the rate for a currency pair",
			ArgsUsage: "<from> <to> <rate> [inverse]",
			Action: func(c *cli.Context) error {
				if c.NArg() < 3 {
					return cli.ShowSubcommandHelp(c)
				}
				rate, err := money.Parse(c.Args().Get(2))
				if err != nil {
					return err
				}
				var inverse *money.Amount
				if c.NArg() > 3 {
					inv, err := money.Parse(c.Args().Get(3))
					if err != nil {
						return err
					}
					inverse = &inv
				}
				e, ctx, cancel, err := setup(c)
				if err != nil {
					return err
				}
				defer cancel()
				err = e.Rates.SetRate(ctx,
					currency.NewCode(c.Args().Get(0)),
					currency.NewCode(c.Args().Get(1)),
					rate, inverse)
				if err != nil {
					return err
				}
				fmt.Println("rate stored")
				return nil
			},
		},
		{
			Name:  "list",
			Usage: "list the administered rate table",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "all", Usage: "include inactive rates"},
			},
			Action: func(c *cli.Context) error {
				e, ctx, cancel, err := setup(c)
				if err != nil {
					return err
				}
				defer cancel()
				rows, err := e.Rates.List(ctx, !c.Bool("all"))
				if err != nil {
					return err
				}
				for x := range rows {
					fmt.Printf("%s/%s\t%s\n", rows[x].FromCurrency,
						rows[x].ToCurrency, rows[x].Rate)
				}
				return nil
			},
		},
	},
}

var sweepCommand = &cli.Command{
	Name:  "sweep",
	Usage: "run one pass of the order expiry sweeper",
	Action: func(c *cli.Context) error {
		e, ctx, cancel, err := setup(c)
		if err != nil {
			return err
		}
		defer cancel()
		e.SweepExpiredOrders(ctx)
		return nil
	},
}

var provisionCommand = &cli.Command{
	Name:  "provision",
	Usage: "manage wallet provisioning",
	Subcommands: []*cli.Command{
		{
			Name:  "drain",
			Usage: "run one pass over the queued provisioning jobs",
			Action: func(c *cli.Context) error {
				e, ctx, cancel, err := setup(c)
				if err != nil {
					return err
				}
				defer cancel()
				e.DrainProvisioningQueue(ctx)
				return nil
			},
		},
		{
			Name:      "enqueue",
			Usage:     "queue wallet provisioning for a user",
			ArgsUsage: "<user-id>",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					return cli.ShowSubcommandHelp(c)
				}
				var userID int64
				if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &userID); err != nil {
					return fmt.Errorf("malformed user id %q", c.Args().Get(0))
				}
				e, ctx, cancel, err := setup(c)
				if err != nil {
					return err
				}
				defer cancel()
				if err := e.EnqueueProvisioning(ctx, userID); err != nil {
					return err
				}
				fmt.Println("queued")
				return nil
			},
		},
	},
}

var balancesCommand = &cli.Command{
	Name:      "balances",
	Usage:     "print a user's balance view",
	ArgsUsage: "<user-id>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return cli.ShowSubcommandHelp(c)
		}
		var userID int64
		if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &userID); err != nil {
			return fmt.Errorf("malformed user id %q", c.Args().Get(0))
		}
		e, ctx, cancel, err := setup(c)
		if err != nil {
			return err
		}
		defer cancel()
		balances, err := e.Wallets.GetBalances(ctx, userID)
		if err != nil {
			return err
		}
		jsonOutput(balances)
		return nil
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "rhinoxctl"
	app.Usage = "operator command line interface for the rhinoxcore backend"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to the configuration file",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "datadir",
			Value:       ".",
			Usage:       "directory holding the sqlite database file",
			Destination: &dataPath,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Value:       30 * time.Second,
			Usage:       "deadline applied to each command",
			Destination: &timeout,
		},
	}
	app.Commands = []*cli.Command{
		schemaCommand,
		rateCommand,
		sweepCommand,
		provisionCommand,
		balancesCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
