package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pzip"
)

// main is a thin CLI wrapper over package pzip: walk a directory, write
// every regular file into a new archive. Grounded on the flag.NewFlagSet
// shape of the teacher's main.go; trimmed to the handful of knobs Options
// exposes, since a full create/extract/list CLI is out of scope here.
func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	flagSet := flag.NewFlagSet("pzip", flag.ExitOnError)
	out := flagSet.String("out", "archive.zip", "output archive path")
	threads := flagSet.Int("threads", 0, "worker threads (0 = runtime.NumCPU)")
	progress := flagSet.Bool("progress", false, "show a console progress line")
	digest := flagSet.String("digest", "", "optional per-entry digest: crc16, xxh3, sha256, blake3, blake2b512")
	preflight := flagSet.Bool("preflight", true, "check free disk space before writing")
	flagSet.Parse(os.Args[1:])

	roots := flagSet.Args()
	if len(roots) == 0 {
		showUsage()
		log.Fatal("no input files or directories given")
	}

	opts := pzip.Options{
		Threads:            *threads,
		PreflightDiskSpace: *preflight,
		DigestAlgorithm:    parseDigest(*digest),
	}
	if *progress {
		opts.Sink = pzip.NewConsoleProgressSink(os.Stdout)
	}

	arc, err := pzip.OpenArchive(*out, opts)
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}

	var walkErr error
	for _, root := range roots {
		if err := addPath(arc, root); err != nil {
			walkErr = err
			break
		}
	}

	if walkErr != nil {
		arc.Abort()
		log.Fatalf("build archive: %v", walkErr)
	}
	if err := arc.Close(); err != nil {
		log.Fatalf("close archive: %v", err)
	}
	fmt.Println()
	fmt.Printf("wrote %s\n", *out)
}

// addPath walks root and writes every regular file it contains, using a
// forward-slash-joined path relative to root's parent as the archive name,
// regardless of host OS.
func addPath(arc *pzip.Archive, root string) error {
	base := filepath.Dir(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		return arc.Write(pzip.FilePath{Path: path}, name)
	})
}

func parseDigest(s string) pzip.DigestAlgorithm {
	switch strings.ToLower(s) {
	case "crc16":
		return pzip.DigestCRC16
	case "xxh3":
		return pzip.DigestXXH3
	case "sha256":
		return pzip.DigestSHA256
	case "blake3":
		return pzip.DigestBLAKE3
	case "blake2b512":
		return pzip.DigestBLAKE2b512
	default:
		return pzip.DigestNone
	}
}

func showUsage() {
	fmt.Println("usage: pzip [-out archive.zip] [-threads N] [-progress] [-digest algo] path [path...]")
}
