package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/do/v2"

	"github.com/iconvault/iconvault/internal/backup"
	"github.com/iconvault/iconvault/internal/config"
	"github.com/iconvault/iconvault/internal/di/providers"
	"github.com/iconvault/iconvault/internal/domain"
	"github.com/iconvault/iconvault/internal/export"
	"github.com/iconvault/iconvault/internal/importer"
	"github.com/iconvault/iconvault/internal/logger"
	"github.com/iconvault/iconvault/internal/service"
	"github.com/iconvault/iconvault/internal/storage"
	"github.com/iconvault/iconvault/internal/svg"
)

func cmdInit(ctx context.Context, injector do.Injector, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: iconvault init <dir>")
	}
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	log := do.MustInvoke[*logger.Logger](injector)
	// Open once to create the area subdirectories and verify write access.
	if _, err := storage.NewDirectory(dir, log.Logger); err != nil {
		return err
	}

	handles := storage.NewHandleStore(cfg.Storage.StatePath)
	if err := handles.Save(dir); err != nil {
		return err
	}

	fmt.Printf("workspace initialized: %s\n", dir)
	return nil
}

func cmdAdd(ctx context.Context, injector do.Injector, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "Icon name (defaults to the file name)")
	description := fs.String("desc", "", "Icon description")
	tags := fs.String("tags", "", "Comma-separated tags")
	categories := fs.String("categories", "", "Comma-separated category IDs")
	colors := fs.String("colors", "", "Comma-separated hex colors")
	multicolor := fs.Bool("multicolor", false, "Mark as a multi-color icon")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: iconvault add [flags] <file.svg>")
	}

	path := fs.Arg(0)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if *name == "" {
		*name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	icons := do.MustInvoke[*service.IconService](injector)
	icon, err := icons.Create(ctx, service.CreateIconRequest{
		Name:        *name,
		Description: *description,
		Tags:        splitList(*tags),
		Categories:  splitList(*categories),
		Colors:      splitList(*colors),
		Multicolor:  *multicolor,
		SVG:         content,
	})
	if err != nil {
		return err
	}

	fmt.Printf("added %s (%s)\n", icon.ID, icon.Name)
	return nil
}

func cmdList(injector do.Injector, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	category := fs.String("category", "", "Filter by category ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	icons := do.MustInvoke[*service.IconService](injector)
	printIcons(icons.List(*category))
	return nil
}

func cmdSearch(injector do.Injector, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	category := fs.String("category", "", "Filter by category ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: iconvault search [flags] <query>")
	}

	icons := do.MustInvoke[*service.IconService](injector)
	printIcons(icons.Search(fs.Arg(0), *category))
	return nil
}

func cmdShow(ctx context.Context, injector do.Injector, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: iconvault show <icon-id>")
	}

	icons := do.MustInvoke[*service.IconService](injector)
	st := do.MustInvoke[*providers.StoreHandle](injector)

	icon, err := icons.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id:          %s\n", icon.ID)
	fmt.Printf("name:        %s\n", icon.Name)
	if icon.Description != "" {
		fmt.Printf("description: %s\n", icon.Description)
	}
	fmt.Printf("file:        %s\n", icon.Filename)
	fmt.Printf("categories:  %s\n", strings.Join(icon.Categories, ", "))
	fmt.Printf("tags:        %s\n", strings.Join(icon.Tags, ", "))
	fmt.Printf("colors:      %s (multicolor: %t)\n", strings.Join(icon.Colors, ", "), icon.Multicolor)
	fmt.Printf("created:     %s\n", icon.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("modified:    %s\n", icon.Modified.Format("2006-01-02 15:04:05"))

	if location, err := st.Icons.LocateSVG(ctx, icon.ID); err == nil && location != "" {
		fmt.Printf("path:        %s\n", location)
	}
	return nil
}

func cmdEdit(ctx context.Context, injector do.Injector, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	name := fs.String("name", "", "New icon name")
	description := fs.String("desc", "", "New description")
	tags := fs.String("tags", "", "Comma-separated tags (replaces the current set)")
	categories := fs.String("categories", "", "Comma-separated category IDs (replaces the current set)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: iconvault edit [flags] <icon-id>")
	}

	// Only fields whose flag was given are updated.
	var req service.UpdateIconRequest
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			req.Name = name
		case "desc":
			req.Description = description
		case "tags":
			v := splitList(*tags)
			req.Tags = &v
		case "categories":
			v := splitList(*categories)
			req.Categories = &v
		}
	})

	icons := do.MustInvoke[*service.IconService](injector)
	icon, err := icons.Update(ctx, fs.Arg(0), req)
	if err != nil {
		return err
	}
	fmt.Printf("updated %s (%s)\n", icon.ID, icon.Name)
	return nil
}

func cmdColors(ctx context.Context, injector do.Injector, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: iconvault colors <icon-id>")
	}
	icons := do.MustInvoke[*service.IconService](injector)

	icon, err := icons.Get(args[0])
	if err != nil {
		return err
	}
	content, err := icons.Content(ctx, icon.ID)
	if err != nil {
		return err
	}
	doc, err := svg.Parse(content)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", icon.Name, icon.ID)
	for _, c := range doc.ExtractColors() {
		fmt.Printf("  %s\n", c)
	}
	fmt.Printf("tracked: %s (multicolor: %t)\n", strings.Join(icon.Colors, ", "), icon.Multicolor)
	return nil
}

func cmdRecolor(ctx context.Context, injector do.Injector, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: iconvault recolor <icon-id> <old=new>...")
	}
	mapping := make(map[string]string, len(args)-1)
	for _, pair := range args[1:] {
		from, to, ok := strings.Cut(pair, "=")
		if !ok || from == "" || to == "" {
			return fmt.Errorf("bad color mapping %q (want old=new)", pair)
		}
		mapping[from] = to
	}

	icons := do.MustInvoke[*service.IconService](injector)
	icon, err := icons.Get(args[0])
	if err != nil {
		return err
	}
	content, err := icons.Content(ctx, icon.ID)
	if err != nil {
		return err
	}
	doc, err := svg.Parse(content)
	if err != nil {
		return err
	}

	doc.Recolor(mapping)
	recolored, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := icons.ReplaceContent(ctx, icon.ID, recolored); err != nil {
		return err
	}

	// Keep the tracked palette in step with the rewritten content.
	colors := make([]string, 0, len(icon.Colors))
	for _, c := range icon.Colors {
		if to, ok := mapping[c]; ok {
			c = to
		}
		colors = append(colors, c)
	}
	if err := icons.SetColors(ctx, icon.ID, colors, icon.Multicolor); err != nil {
		return err
	}

	fmt.Printf("recolored %s; colors now: %s\n", icon.ID, strings.Join(colors, ", "))
	return nil
}

func cmdRm(ctx context.Context, injector do.Injector, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: iconvault rm <icon-id>")
	}
	icons := do.MustInvoke[*service.IconService](injector)
	if err := icons.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func cmdCat(ctx context.Context, injector do.Injector, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: iconvault cat <list|tree|add|rm|mv|path|search> [args]")
	}
	categories := do.MustInvoke[*service.CategoryService](injector)

	switch args[0] {
	case "list":
		for _, c := range categories.List() {
			parent := c.Parent
			if parent == "" {
				parent = "-"
			}
			fmt.Printf("%-14s %-24s parent: %s\n", c.ID, c.Name, parent)
		}
		return nil
	case "tree":
		printTree(categories.Tree(), 0)
		return nil
	case "add":
		fs := flag.NewFlagSet("cat add", flag.ContinueOnError)
		description := fs.String("desc", "", "Category description")
		parent := fs.String("parent", "", "Parent category ID")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: iconvault cat add [flags] <name>")
		}
		category, err := categories.Create(ctx, service.CreateCategoryRequest{
			Name:        fs.Arg(0),
			Description: *description,
			Parent:      *parent,
		})
		if err != nil {
			return err
		}
		fmt.Printf("added %s (%s)\n", category.ID, category.Name)
		return nil
	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: iconvault cat rm <category-id>")
		}
		if err := categories.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[1])
		return nil
	case "mv":
		if len(args) != 3 {
			return fmt.Errorf("usage: iconvault cat mv <category-id> <new-parent-id|->")
		}
		parent := args[2]
		if parent == "-" {
			parent = ""
		}
		if _, err := categories.Update(ctx, args[1], service.UpdateCategoryRequest{Parent: &parent}); err != nil {
			return err
		}
		fmt.Printf("moved %s\n", args[1])
		return nil
	case "path":
		if len(args) != 2 {
			return fmt.Errorf("usage: iconvault cat path <category-id>")
		}
		path := categories.PathTo(args[1])
		names := make([]string, 0, len(path))
		for _, c := range path {
			names = append(names, c.Name)
		}
		fmt.Println(strings.Join(names, " > "))
		return nil
	case "search":
		if len(args) != 2 {
			return fmt.Errorf("usage: iconvault cat search <query>")
		}
		for _, c := range categories.Search(args[1]) {
			fmt.Printf("%-14s %s\n", c.ID, c.Name)
		}
		return nil
	default:
		return fmt.Errorf("unknown cat subcommand %q", args[0])
	}
}

func cmdImport(ctx context.Context, injector do.Injector, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: iconvault import <file.svg|dir>...")
	}

	candidates, err := collectCandidates(args)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no SVG files found")
	}

	reconciler := do.MustInvoke[*importer.Reconciler](injector)
	batch, err := reconciler.Stage(ctx, candidates)
	if err != nil {
		return err
	}

	conflicts := batch.Conflicts()
	if len(conflicts) > 0 {
		fmt.Printf("%d name conflicts need resolution\n", len(conflicts))
		reader := bufio.NewReader(os.Stdin)
		for i, c := range conflicts {
			if err := resolveInteractive(batch, i, c, reader); err != nil {
				return err
			}
		}
	}

	report, err := batch.Finalize(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("imported: %d added, %d replaced, %d skipped (batch %s)\n",
		len(report.Added), len(report.Replaced), report.Skipped, report.BatchID)
	return nil
}

// collectCandidates walks the given files and directories for .svg files.
func collectCandidates(paths []string) ([]importer.Candidate, error) {
	var candidates []importer.Candidate
	addFile := func(path string) error {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		candidates = append(candidates, importer.Candidate{Name: name, SVG: content})
		return nil
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := addFile(path); err != nil {
				return nil, err
			}
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".svg") {
				continue
			}
			if err := addFile(filepath.Join(path, entry.Name())); err != nil {
				return nil, err
			}
		}
	}
	return candidates, nil
}

func resolveInteractive(batch *importer.Batch, i int, c *importer.Conflict, reader *bufio.Reader) error {
	for {
		fmt.Printf("%q collides with existing icon %s (%s)\n", c.Candidate.Name, c.ExistingName, c.ExistingID)
		fmt.Print("  [r]ename / [o]verwrite content / [s]kip? ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "r", "rename":
			fmt.Print("  new name: ")
			name, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			if err := batch.ResolveRename(i, strings.TrimSpace(name)); err != nil {
				fmt.Printf("  %v\n", err)
				continue
			}
			return nil
		case "o", "overwrite", "replace":
			return batch.ResolveReplace(i)
		case "s", "skip":
			return batch.ResolveSkip(i)
		default:
			fmt.Println("  please answer r, o, or s")
		}
	}
}

func cmdExport(ctx context.Context, injector do.Injector, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "icon-export.zip", "Output file (.zip or .json)")
	all := fs.Bool("all", false, "Export every icon")
	withJSON := fs.Bool("json", true, "Include the consumer JSON document")
	withSVG := fs.Bool("svg", true, "Include raw SVG files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	icons := do.MustInvoke[*service.IconService](injector)
	manager := do.MustInvoke[*export.Manager](injector)

	iconIDs := fs.Args()
	if *all {
		for _, icon := range icons.List("") {
			iconIDs = append(iconIDs, icon.ID)
		}
	}
	if len(iconIDs) == 0 {
		return fmt.Errorf("usage: iconvault export [flags] <icon-id>... (or --all)")
	}

	if strings.HasSuffix(*out, ".json") {
		data, err := manager.JSONBytes(ctx, iconIDs)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("exported %d icons to %s\n", len(iconIDs), *out)
		return nil
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := manager.Zip(ctx, f, iconIDs, *withJSON, *withSVG); err != nil {
		return err
	}
	fmt.Printf("exported %d icons to %s\n", len(iconIDs), *out)
	return nil
}

func cmdBackup(ctx context.Context, injector do.Injector) error {
	svc := do.MustInvoke[*backup.Service](injector)
	result, err := svc.Create(ctx, backup.Options{})
	if err != nil {
		return err
	}
	fmt.Printf("backup written: %s (%d files, %d bytes)\n", result.Path, result.Counts.Files, result.Size)
	fmt.Printf("checksum: %s\n", result.Checksum)
	return nil
}

func cmdBackups(ctx context.Context, injector do.Injector) error {
	svc := do.MustInvoke[*backup.Service](injector)
	backups, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("no backups found")
		return nil
	}
	for _, b := range backups {
		fmt.Printf("%-28s %s  %d bytes\n", b.ID, b.CreatedAt.Format("2006-01-02 15:04:05"), b.Size)
	}
	return nil
}

func cmdRestore(ctx context.Context, injector do.Injector, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: iconvault restore <archive>")
	}
	svc := do.MustInvoke[*backup.Service](injector)

	if manifest, err := backup.ReadManifest(args[0]); err == nil {
		fmt.Printf("restoring archive from %s (%d icons, %d categories)\n",
			manifest.CreatedAt.Format("2006-01-02"), manifest.Counts.Icons, manifest.Counts.Categories)
	}
	if err := svc.Restore(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("restore complete")
	return nil
}

func cmdWatch(ctx context.Context, injector do.Injector) error {
	handle, err := do.Invoke[*providers.WatcherHandle](injector)
	if err != nil {
		return err
	}
	st := do.MustInvoke[*providers.StoreHandle](injector)

	go func() { _ = handle.Start(ctx) }()
	fmt.Println("watching workspace, ctrl-c to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-handle.Events():
			fmt.Printf("%s: %s/%s\n", ev.Type, ev.Area, ev.Name)
			if ev.Area == storage.AreaData {
				if err := st.Reload(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
				}
			}
		case err := <-handle.Errors():
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func cmdUsage(args []string) error {
	format := "react"
	if len(args) > 0 {
		format = args[0]
	}
	snippet, err := export.UsageExample(format)
	if err != nil {
		return err
	}
	fmt.Println(snippet)
	return nil
}

func cmdStats(injector do.Injector) error {
	icons := do.MustInvoke[*service.IconService](injector)
	categories := do.MustInvoke[*service.CategoryService](injector)

	iconStats := icons.Stats()
	catStats := categories.Stats()

	fmt.Printf("icons:      %d (%d categories in use)\n", iconStats.Total, iconStats.UsedCategories)
	fmt.Printf("categories: %d (%d top-level)\n", catStats.Total, catStats.TopLevel)
	if len(iconStats.Recent) > 0 {
		fmt.Println("recent:")
		for _, icon := range iconStats.Recent {
			fmt.Printf("  %-14s %s\n", icon.ID, icon.Name)
		}
	}
	return nil
}

func printIcons(icons []domain.Icon) {
	if len(icons) == 0 {
		fmt.Println("no icons")
		return
	}
	for _, icon := range icons {
		tags := ""
		if len(icon.Tags) > 0 {
			tags = "  [" + strings.Join(icon.Tags, ", ") + "]"
		}
		fmt.Printf("%-14s %s%s\n", icon.ID, icon.Name, tags)
	}
}

func printTree(nodes []*domain.CategoryNode, depth int) {
	for _, node := range nodes {
		fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth), node.Name, node.ID)
		printTree(node.Children, depth+1)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
