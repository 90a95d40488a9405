// Command ngc is the ahead-of-time compiler CLI: it reads a project
// config, compiles every listed file through the core pipeline, and
// writes the emitted JavaScript to the configured output directory.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/gaarutyunov/facet/internal/driver"
	"github.com/gaarutyunov/facet/pkg/compiler"
	"github.com/gaarutyunov/facet/pkg/linker"
)

func main() {
	app := &cli.App{
		Name:  "ngc",
		Usage: "ahead-of-time template compiler",
		Commands: []*cli.Command{
			buildCommand(),
			linkCommand(),
			explainCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "compile every file listed in a project config",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Value: "facet.json", Usage: "project config path"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "rebuild when a source file changes"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log per-file progress"},
		},
		Action: func(ctx *cli.Context) error {
			project, err := compiler.LoadProject(ctx.String("project"))
			if err != nil {
				return err
			}
			d := driver.New(ctx.Bool("verbose"))
			if !ctx.Bool("watch") {
				return d.Run(project)
			}
			return watch(d, project)
		},
	}
}

// watch rebuilds on every write to a project source file. Build errors
// are logged rather than returned: a watch session outlives a broken
// intermediate state.
func watch(d *driver.Driver, project *compiler.Project) error {
	if err := d.Run(project); err != nil {
		log.Printf("build failed: %v", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs := map[string]bool{}
	for _, f := range project.Files {
		dirs[filepath.Dir(project.Resolve(f))] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	watched := map[string]bool{}
	for _, f := range project.Files {
		watched[project.Resolve(f)] = true
	}

	log.Printf("watching %d file(s)", len(watched))
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[ev.Name] || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Printf("%s changed, rebuilding", ev.Name)
			if err := d.Run(project); err != nil {
				log.Printf("build failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func linkCommand() *cli.Command {
	return &cli.Command{
		Name:      "link",
		Usage:     "rewrite partial declarations in pre-compiled library files",
		ArgsUsage: "<file.js> [...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory (default: alongside input)"},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() == 0 {
				return fmt.Errorf("link: no input files")
			}
			l := linker.New()
			d := driver.New(false)
			for _, name := range ctx.Args().Slice() {
				content, err := os.ReadFile(name)
				if err != nil {
					return err
				}
				code := l.LinkFile(name, string(content))
				out := linkedPath(name, ctx.String("out"))
				if err := d.WriteOutput(out, []byte(code)); err != nil {
					return err
				}
				if strings.HasPrefix(code, "/* Linker Error") {
					return fmt.Errorf("link %s failed: %s", name, code)
				}
				log.Printf("%s -> %s", name, out)
			}
			return nil
		},
	}
}

func linkedPath(name, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)) + ".linked.js"
	if outDir == "" {
		return filepath.Join(filepath.Dir(name), base)
	}
	return filepath.Join(outDir, base)
}
