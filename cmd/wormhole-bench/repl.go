package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/probeum/wormhole/wormhole"
)

// runREPL drives an interactive int64-keyed index using peterh/liner
// for line-edited input.
// Commands: put <k> <v> | get <k> | del <k> | scan [start] [end] | validate | quit
func runREPL(cfg benchConfig) error {
	idx := wormhole.NewInt64Index(wormhole.Config{Capacity: cfg.Capacity, Debug: cfg.Debug})

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("wormhole> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err.Error() == "EOF" {
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if err := dispatch(idx, input); err != nil {
			if err == errQuit {
				return nil
			}
			printError(err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func dispatch(idx *wormhole.Int64Index, input string) error {
	fields := strings.Fields(input)
	switch fields[0] {
	case "quit", "exit":
		return errQuit
	case "put":
		if len(fields) != 3 {
			return fmt.Errorf("usage: put <key> <value>")
		}
		k, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return err
		}
		old, existed, err := idx.Put(k, fields[2])
		if err != nil {
			return err
		}
		if existed {
			fmt.Printf("overwrote %v\n", old)
		} else {
			fmt.Println("inserted")
		}
	case "get":
		if len(fields) != 2 {
			return fmt.Errorf("usage: get <key>")
		}
		k, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return err
		}
		v, ok := idx.Get(k)
		if !ok {
			fmt.Println("(not found)")
			return nil
		}
		fmt.Println(v)
	case "del":
		if len(fields) != 2 {
			return fmt.Errorf("usage: del <key>")
		}
		k, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return err
		}
		deleted, err := idx.Delete(k)
		if err != nil {
			return err
		}
		fmt.Println(deleted)
	case "scan":
		var start, end *int64
		if len(fields) > 1 {
			v, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return err
			}
			start = &v
		}
		if len(fields) > 2 {
			v, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return err
			}
			end = &v
		}
		idx.Scan(start, end, false, func(k int64, v interface{}) bool {
			fmt.Printf("%d -> %v\n", k, v)
			return true
		})
	case "validate":
		if err := idx.Validate(); err != nil {
			return err
		}
		fmt.Println("ok")
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}
