// Package main provides the IconVault command-line interface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/iconvault/iconvault/internal/config"
	"github.com/iconvault/iconvault/internal/di"
	"github.com/iconvault/iconvault/internal/logger"
)

const usageText = `iconvault - local SVG icon library manager

Usage:
  iconvault [global flags] <command> [args]

Commands:
  init <dir>            choose a workspace directory (enables directory mode)
  add <file.svg>        add an icon from an SVG file
  list                  list icons (optionally by category)
  search <query>        search icons by name, description, or tags
  show <icon-id>        show one icon's details
  edit <icon-id>        update an icon's metadata
  colors <icon-id>      show the colors an icon uses
  recolor <icon-id> <old=new>...
                        rewrite fills and strokes, then save
  rm <icon-id>          delete an icon
  cat <subcommand>      manage categories (list, tree, add, rm, mv, path, search)
  import <path...>      bulk-import SVG files with duplicate reconciliation
  export <icon-id...>   export icons (JSON, SVG set, or ZIP bundle)
  backup                create a backup archive
  backups               list backup archives
  restore <archive>     restore from a backup archive
  watch                 watch the workspace for out-of-band changes
  usage <format>        print a consumer snippet (react, vue, vanilla)
  stats                 show collection statistics
  version               print the version

Global flags:
  --env, --log-level, --storage-mode, --workspace, --badger-path,
  --backup-dir, --env-file
`

func main() {
	cfg, args, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "iconvault: %v\n", err)
		os.Exit(2)
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	injector := di.NewContainer(cfg)
	defer func() { _ = injector.Shutdown() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, injector, cfg, args[0], args[1:]); err != nil {
		if log, invokeErr := do.Invoke[*logger.Logger](injector); invokeErr == nil {
			log.Error("command failed", "command", args[0], "error", err)
		}
		fmt.Fprintf(os.Stderr, "iconvault: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, injector do.Injector, cfg *config.Config, command string, args []string) error {
	switch command {
	case "init":
		return cmdInit(ctx, injector, cfg, args)
	case "add":
		return cmdAdd(ctx, injector, args)
	case "list":
		return cmdList(injector, args)
	case "search":
		return cmdSearch(injector, args)
	case "show":
		return cmdShow(ctx, injector, args)
	case "edit":
		return cmdEdit(ctx, injector, args)
	case "colors":
		return cmdColors(ctx, injector, args)
	case "recolor":
		return cmdRecolor(ctx, injector, args)
	case "rm":
		return cmdRm(ctx, injector, args)
	case "cat":
		return cmdCat(ctx, injector, args)
	case "import":
		return cmdImport(ctx, injector, args)
	case "export":
		return cmdExport(ctx, injector, args)
	case "backup":
		return cmdBackup(ctx, injector)
	case "backups":
		return cmdBackups(ctx, injector)
	case "restore":
		return cmdRestore(ctx, injector, args)
	case "watch":
		return cmdWatch(ctx, injector)
	case "usage":
		return cmdUsage(args)
	case "stats":
		return cmdStats(injector)
	case "version":
		fmt.Println(cfg.App.Version)
		return nil
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return nil
	default:
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("unknown command %q", command)
	}
}
