// Command inspect dumps raw rows from a store for debugging. Pointing it
// at a target store with a view prefix (users/, posts_by_author/, ...)
// shows exactly what the fan-out wrote.
package main

import (
	"flag"
	"fmt"
	"os"

	"shiftdb/pkg/store"
)

func main() {
	var path, prefix string
	var keysOnly bool
	flag.StringVar(&path, "path", "", "pebble store path")
	flag.StringVar(&prefix, "prefix", "", "key prefix to scan, empty scans everything")
	flag.BoolVar(&keysOnly, "keys", false, "print keys only")
	flag.Parse()
	if path == "" {
		fmt.Fprintln(os.Stderr, "--path required")
		os.Exit(2)
	}

	db, err := store.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	kvs, err := db.Scan(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}
	for _, kv := range kvs {
		if keysOnly {
			fmt.Println(kv.Key)
			continue
		}
		fmt.Printf("%s\t%s\n", kv.Key, kv.Value)
	}
	fmt.Fprintf(os.Stderr, "%d rows\n", len(kvs))
}
