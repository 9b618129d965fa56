// Command silt is an interactive shell over a silt database. Commands
// map one-to-one to DB methods, with per-command wall-clock timing.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/siltdb/silt"
)

const usage = `commands:
  insert <key> <value>     store a value
  delete <key>             delete a key
  delrange <start> <end>   delete every key in [start, end]
  find <key>               look up a key
  findmany <key> [...]     look up several keys at once
  range <start> <end>      list entries with start <= key <= end
  stats                    memtable and segment counts
  flush                    force the memtable to disk
  help                     show this help
  quit                     flush, compact if needed, and exit`

func main() {
	configPath := flag.String("config", "silt.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := initConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	initLogger(&cfg)

	db, err := silt.Open(cfg.Dir, &silt.Config{
		MemtableLimit: cfg.DB.MemtableLimit,
		MaxSegments:   cfg.DB.MaxSegments,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}

	slog.Info("silt shell started", "dir", cfg.Dir,
		"memtable_limit", cfg.DB.MemtableLimit, "max_segments", cfg.DB.MaxSegments)
	fmt.Println(usage)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("silt> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if done := run(db, strings.Fields(line)); done {
			break
		}
	}

	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command line. Returns true when the shell should
// exit.
func run(db *silt.DB, args []string) bool {
	started := time.Now()

	switch args[0] {
	case "insert":
		if len(args) < 3 {
			fmt.Println("usage: insert <key> <value>")
			return false
		}
		key, err := parseKey(args[1])
		if err != nil {
			fmt.Println(err)
			return false
		}
		if err := db.Insert(key, strings.Join(args[2:], " ")); err != nil {
			fmt.Printf("insert failed: %v\n", err)
			return false
		}
		fmt.Printf("ok (%s)\n", time.Since(started).Round(time.Microsecond))

	case "delete":
		if len(args) != 2 {
			fmt.Println("usage: delete <key>")
			return false
		}
		key, err := parseKey(args[1])
		if err != nil {
			fmt.Println(err)
			return false
		}
		db.Delete(key)
		fmt.Printf("ok (%s)\n", time.Since(started).Round(time.Microsecond))

	case "delrange":
		start, end, err := parseBounds(args)
		if err != nil {
			fmt.Println(err)
			return false
		}
		db.DeleteRange(start, end)
		fmt.Printf("ok (%s)\n", time.Since(started).Round(time.Microsecond))

	case "find":
		if len(args) != 2 {
			fmt.Println("usage: find <key>")
			return false
		}
		key, err := parseKey(args[1])
		if err != nil {
			fmt.Println(err)
			return false
		}
		value, found := db.Find(key)
		if !found {
			fmt.Printf("key %d not found (%s)\n", key, time.Since(started).Round(time.Microsecond))
			return false
		}
		fmt.Printf("%s (%s)\n", value, time.Since(started).Round(time.Microsecond))

	case "findmany":
		if len(args) < 2 {
			fmt.Println("usage: findmany <key> [<key> ...]")
			return false
		}
		keys := make([]int64, 0, len(args)-1)
		for _, arg := range args[1:] {
			key, err := parseKey(arg)
			if err != nil {
				fmt.Println(err)
				return false
			}
			keys = append(keys, key)
		}
		results := db.FindMany(keys)
		for _, key := range keys {
			if value, ok := results[key]; ok {
				fmt.Printf("%d: %s\n", key, value)
			} else {
				fmt.Printf("%d: not found\n", key)
			}
		}
		fmt.Printf("found %d/%d keys (%s)\n", len(results), len(keys),
			time.Since(started).Round(time.Microsecond))

	case "range":
		start, end, err := parseBounds(args)
		if err != nil {
			fmt.Println(err)
			return false
		}
		entries := db.Range(start, end)
		for _, entry := range entries {
			fmt.Printf("%d: %s\n", entry.Key, entry.Value)
		}
		fmt.Printf("%d entries (%s)\n", len(entries), time.Since(started).Round(time.Microsecond))

	case "stats":
		fmt.Printf("memtable entries: %d\n", db.MemtableLen())
		fmt.Printf("segments: %d\n", db.SegmentCount())

	case "flush":
		if err := db.Flush(); err != nil {
			fmt.Printf("flush failed: %v\n", err)
			return false
		}
		fmt.Printf("ok (%s)\n", time.Since(started).Round(time.Microsecond))

	case "help":
		fmt.Println(usage)

	case "quit", "exit":
		return true

	default:
		fmt.Printf("unknown command %q (try 'help')\n", args[0])
	}

	return false
}

func parseKey(s string) (int64, error) {
	key, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: must be an integer", s)
	}
	return key, nil
}

func parseBounds(args []string) (int64, int64, error) {
	if len(args) != 3 {
		return 0, 0, fmt.Errorf("usage: %s <start> <end>", args[0])
	}
	start, err := parseKey(args[1])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseKey(args[2])
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("start %d is greater than end %d", start, end)
	}
	return start, end, nil
}
