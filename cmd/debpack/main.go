package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/sangkips/inventario/internal/packaging"
	"github.com/sangkips/inventario/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("packaging failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "debpack",
		Usage: "build a .deb package from a prebuilt binary",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "package name (cleaned to Debian rules)", Required: true},
			&cli.StringFlag{Name: "version", Aliases: []string{"V"}, Usage: "package version, e.g. 1.0.0 or 1.0.0-1", Required: true},
			&cli.StringFlag{Name: "arch", Aliases: []string{"a"}, Usage: "architecture: " + strings.Join(packaging.Architectures, ", "), Value: "amd64"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "one-line description", Required: true},
			&cli.StringFlag{Name: "long-description", Usage: "extended description; blank lines become paragraph breaks"},
			&cli.StringFlag{Name: "maintainer", Aliases: []string{"m"}, Usage: "maintainer name", Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "maintainer e-mail", Required: true},
			&cli.StringFlag{Name: "depends", Usage: "comma separated Depends field"},
			&cli.StringFlag{Name: "binary", Aliases: []string{"b"}, Usage: "executable to install as /usr/bin/<name>", Required: true},
			&cli.StringFlag{Name: "icon", Usage: "icon image; a placeholder is generated when omitted"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "directory for the staging tree and the .deb", Value: "."},
			&cli.BoolFlag{Name: "clean", Usage: "remove the staging tree after a successful build"},
			&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		},
		Action: build,
	}
}

func build(c *cli.Context) error {
	log, err := logger.New(logger.Options{Level: c.String("log-level"), Format: "text", Output: c.App.ErrWriter})
	if err != nil {
		return err
	}

	meta := &packaging.Metadata{
		Name:             c.String("name"),
		Version:          c.String("version"),
		Architecture:     c.String("arch"),
		ShortDescription: c.String("description"),
		LongDescription:  strings.ReplaceAll(c.String("long-description"), `\n`, "\n"),
		MaintainerName:   c.String("maintainer"),
		MaintainerEmail:  c.String("email"),
		Depends:          c.String("depends"),
		Binary:           c.String("binary"),
		Icon:             c.String("icon"),
	}
	if cleaned := packaging.CleanName(meta.Name); cleaned != meta.Name {
		log.WithField("name", cleaned).Info("package name cleaned")
	}

	result, err := packaging.NewBuilder(c.String("out"), log).Build(c.Context, meta, c.Bool("clean"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "package: %s (%s)\n", result.DebPath, humanSize(result.Size))
	fmt.Fprintf(w, "install: sudo dpkg -i %s\n", result.DebPath)
	fmt.Fprintf(w, "inspect: dpkg-deb -c %s\n", result.DebPath)
	return nil
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n > mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}
