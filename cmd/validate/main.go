// Package main provides a world document validator for content authors.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fable-engine/fable/internal/game/asset"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <world-file>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	quiet := flag.Bool("quiet", false, "suppress per-file summaries")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		start := time.Now()
		w, err := asset.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if !*quiet {
			rooms := w.Rooms.AllRooms()
			actions := 0
			for _, r := range rooms {
				actions += len(r.Actions)
			}
			fmt.Printf("%s: ok (%d rooms, %d actions) [%s]\n",
				path, len(rooms), actions, time.Since(start))
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
