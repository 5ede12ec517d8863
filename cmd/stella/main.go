// Command stella is a thin front end over the stellapack core: it packs,
// inspects, verifies, extracts, and catalogs .stella archives. The
// reconstruction pipelines that produce voxel fields and meshes live
// outside this tool; pack operates on an already-materialized layout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kk-code-lab/stellapack/internal/catalog"
	"github.com/kk-code-lab/stellapack/internal/container"
	"github.com/kk-code-lab/stellapack/internal/schema"
)

const usageText = `Usage: stella <command> [flags]

Commands:
  pack      Pack an extracted layout directory into a .stella archive
  info      Print archive manifest and member inventory
  verify    Verify the archive's checksum manifest
  validate  Structurally validate an archive
  extract   Extract all archive entries to a directory
  catalog   Manage the local world catalog (add|list|rm)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "pack":
		err = cmdPack(os.Args[2:])
	case "info":
		err = cmdInfo(os.Args[2:])
	case "verify":
		err = cmdVerify(os.Args[2:])
	case "validate":
		err = cmdValidate(os.Args[2:])
	case "extract":
		err = cmdExtract(os.Args[2:])
	case "catalog":
		err = cmdCatalog(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usageText)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	inDir := fs.String("in", "", "Layout directory containing manifest.json")
	outPath := fs.String("out", "", "Output .stella path")
	configPath := fs.String("config", "", "Optional YAML config file")
	checksums := fs.Bool("checksums", true, "Include checksums.sha256")
	_ = fs.Parse(args)
	if *inDir == "" || *outPath == "" {
		return fmt.Errorf("pack: -in and -out are required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	include := *checksums
	if cfg.Checksums != nil && !flagWasSet(fs, "checksums") {
		include = *cfg.Checksums
	}

	manifest, payloads, err := readLayout(*inDir)
	if err != nil {
		return err
	}
	if errs := manifest.Validate(); len(errs) > 0 {
		return fmt.Errorf("pack: invalid manifest: %s", strings.Join(errs, "; "))
	}
	if err := container.Pack(*outPath, manifest, payloads, container.PackOptions{IncludeChecksums: include}); err != nil {
		return err
	}
	fmt.Printf("Packed %s (%d payload entries)\n", *outPath, len(payloads))
	return nil
}

// readLayout loads manifest.json plus every other regular file under dir,
// keyed by forward-slash relative path.
func readLayout(dir string) (*schema.Manifest, map[string][]byte, error) {
	manifestData, err := os.ReadFile(filepath.Join(dir, container.ManifestPath))
	if err != nil {
		return nil, nil, fmt.Errorf("pack: %w", err)
	}
	manifest, err := schema.ParseManifest(manifestData)
	if err != nil {
		return nil, nil, err
	}

	payloads := map[string][]byte{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == container.ManifestPath || rel == container.ChecksumPath {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		payloads[rel] = data
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return manifest, payloads, nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("info: exactly one archive path required")
	}
	info, err := container.Info(fs.Arg(0))
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(info)
	}
	title := ""
	if info.Manifest.World != nil {
		title = info.Manifest.World.Title
	}
	fmt.Printf("format=%s version=%d title=%q levels=%d\n", info.Manifest.Format, info.Manifest.Version, title, len(info.Manifest.Levels))
	for _, f := range info.Files {
		fmt.Printf("  %s (%d bytes, %d compressed)\n", f.Path, f.UncompressedSize, f.CompressedSize)
	}
	fmt.Printf("total=%d archive=%d\n", info.TotalUncompressedSize, info.ArchiveSize)
	return nil
}

func cmdVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("verify: exactly one archive path required")
	}
	ok, notes := container.VerifyChecksums(fs.Arg(0))
	for _, n := range notes {
		fmt.Println(n)
	}
	if !ok {
		return fmt.Errorf("checksum verification failed")
	}
	fmt.Println("OK")
	return nil
}

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("validate: exactly one archive path required")
	}
	ok, errs := container.Validate(fs.Arg(0))
	for _, e := range errs {
		fmt.Println(e)
	}
	if !ok {
		return fmt.Errorf("validation failed with %d error(s)", len(errs))
	}
	fmt.Println("OK")
	return nil
}

func cmdExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	outDir := fs.String("out", "", "Output directory")
	_ = fs.Parse(args)
	if fs.NArg() != 1 || *outDir == "" {
		return fmt.Errorf("extract: archive path and -out are required")
	}
	r, err := container.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	if err := r.ExtractAll(*outDir); err != nil {
		return err
	}
	fmt.Printf("Extracted %d entries to %s\n", len(r.List()), *outDir)
	return nil
}

func cmdCatalog(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("catalog: subcommand required (add|list|rm)")
	}
	sub, rest := args[0], args[1:]
	fs := flag.NewFlagSet("catalog "+sub, flag.ExitOnError)
	dbPath := fs.String("db", "", "Catalog database path")
	configPath := fs.String("config", "", "Optional YAML config file")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(rest)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	path := *dbPath
	if path == "" {
		path = cfg.CatalogDB
	}
	if path == "" {
		path = defaultCatalogPath()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	switch sub {
	case "add":
		if fs.NArg() != 1 {
			return fmt.Errorf("catalog add: exactly one archive path required")
		}
		rec, err := store.Add(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %s title=%q levels=%d digest=%s\n", rec.Path, rec.Title, rec.Levels, rec.Digest[:12])
		return nil
	case "list":
		records, err := store.List(ctx)
		if err != nil {
			return err
		}
		if records == nil {
			records = []catalog.Record{}
		}
		if *jsonOut {
			return writeJSON(records)
		}
		for _, rec := range records {
			fmt.Printf("%s title=%q levels=%d size=%d indexed=%s\n", rec.Path, rec.Title, rec.Levels, rec.SizeBytes, rec.IndexedAt)
		}
		return nil
	case "rm":
		if fs.NArg() != 1 {
			return fmt.Errorf("catalog rm: exactly one archive path required")
		}
		return store.Remove(ctx, fs.Arg(0))
	default:
		return fmt.Errorf("catalog: unknown subcommand %s", sub)
	}
}

func defaultCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stella-catalog.db"
	}
	return filepath.Join(home, ".stella", "catalog.db")
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
