// Command wormhole-bench is a benchmarking and demo harness for the
// wormhole library: it drives a randomized workload against a
// wormhole.Int64Index (or an interactive REPL against one) and reports
// insert/delete/get/scan counts and validation results.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	fuzz "github.com/google/gofuzz"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/probeum/wormhole/log"
	"github.com/probeum/wormhole/wormhole"
)

func main() {
	app := cli.NewApp()
	app.Name = "wormhole-bench"
	app.Usage = "exercise and report on a wormhole ordered index"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "path to a TOML config file"},
		cli.IntFlag{Name: "capacity", Usage: "leaf capacity F (overrides config)"},
		cli.BoolFlag{Name: "debug", Usage: "validate after every mutation"},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "run the randomized stress workload and report",
			Action: func(c *cli.Context) error {
				cfg, err := configFromContext(c)
				if err != nil {
					return err
				}
				return runStress(cfg)
			},
		},
		{
			Name:  "repl",
			Usage: "interactively drive an int64-keyed index",
			Action: func(c *cli.Context) error {
				cfg, err := configFromContext(c)
				if err != nil {
					return err
				}
				return runREPL(cfg)
			},
		},
	}
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func configFromContext(c *cli.Context) (benchConfig, error) {
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return cfg, err
	}
	if c.GlobalIsSet("capacity") {
		cfg.Capacity = c.GlobalInt("capacity")
	}
	if c.GlobalIsSet("debug") {
		cfg.Debug = c.GlobalBool("debug")
	}
	return cfg, nil
}

func runStress(cfg benchConfig) error {
	idx := wormhole.NewInt64Index(wormhole.Config{Capacity: cfg.Capacity, Debug: cfg.Debug})
	fz := fuzz.New().RandSource(rand.NewSource(cfg.Seed)).NilChance(0)

	stats := runStats{}
	keys := make([]int64, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		var k int64
		fz.Fuzz(&k)
		_, existed, err := idx.Put(k, i)
		if err != nil {
			return fmt.Errorf("put %d: %w", k, err)
		}
		if !existed {
			stats.Inserted++
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		if _, ok := idx.Get(k); ok {
			stats.GetHits++
		} else {
			stats.GetMisses++
		}
	}

	idx.Scan(nil, nil, false, func(k int64, v interface{}) bool {
		stats.ScanRows++
		return true
	})

	start := time.Now()
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("validate after load: %w", err)
	}
	stats.Validated = true
	stats.ValidateMs = time.Since(start).Milliseconds()

	deleteN := len(keys) / 2
	for i := 0; i < deleteN; i++ {
		deleted, err := idx.Delete(keys[i])
		if err != nil {
			return fmt.Errorf("delete %d: %w", keys[i], err)
		}
		if deleted {
			stats.Deleted++
		}
	}
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("validate after delete: %w", err)
	}

	log.Info("stress run complete", "inserted", stats.Inserted, "deleted", stats.Deleted)
	printReport("wormhole-bench run", stats)
	return nil
}
