package main

import "github.com/dustin/go-humanize"

func humanizeBytes(b uint64) string {
	return humanize.Bytes(b)
}
