package packaging

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"
)

const controlTemplate = `Package: {{.Name}}
Version: {{.Version}}
Architecture: {{.Architecture}}
Maintainer: {{.Maintainer}}
{{- if .Depends}}
Depends: {{.Depends}}
{{- end}}
Priority: optional
Section: misc
Description: {{.ShortDescription}}
{{- range longDescription .LongDescription}}
{{.}}
{{- end}}
`

const postinstTemplate = `#!/bin/sh
set -e

if command -v gtk-update-icon-cache >/dev/null 2>&1; then
    gtk-update-icon-cache -f -t /usr/share/icons/hicolor 2>/dev/null || true
fi

if command -v update-desktop-database >/dev/null 2>&1; then
    update-desktop-database /usr/share/applications 2>/dev/null || true
fi

exit 0
`

const prermTemplate = `#!/bin/sh
set -e

exit 0
`

const desktopTemplate = `[Desktop Entry]
Type=Application
Name={{.Name}}
Comment={{.ShortDescription}}
Exec={{.Name}}
Icon={{.Name}}
Categories=Application;
Terminal=false
StartupNotify=true
`

const changelogTemplate = `{{.Meta.Name}} ({{.Meta.Version}}) unstable; urgency=low

  * Initial release

 -- {{.Meta.Maintainer}}  {{.Date}}
`

const copyrightTemplate = `Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/
Upstream-Name: {{.Meta.Name}}
Source: <insert source URL here>

Files: *
Copyright: {{.Year}} {{.Meta.Maintainer}}
License: GPL-3+
 This program is free software: you can redistribute it and/or modify
 it under the terms of the GNU General Public License as published by
 the Free Software Foundation, either version 3 of the License, or
 (at your option) any later version.
 .
 This program is distributed in the hope that it will be useful,
 but WITHOUT ANY WARRANTY; without even the implied warranty of
 MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 GNU General Public License for more details.
 .
 You should have received a copy of the GNU General Public License
 along with this program.  If not, see <https://www.gnu.org/licenses/>.
 .
 On Debian systems, the complete text of the GNU General
 Public License version 3 can be found in "/usr/share/common-licenses/GPL-3".
`

// changelogDate is the RFC 5322 form dpkg expects in changelog trailers
const changelogDate = "Mon, 02 Jan 2006 15:04:05 -0700"

var templates = template.Must(template.New("control").
	Funcs(template.FuncMap{"longDescription": longDescription}).
	Parse(controlTemplate))

func init() {
	template.Must(templates.New("postinst").Parse(postinstTemplate))
	template.Must(templates.New("prerm").Parse(prermTemplate))
	template.Must(templates.New("desktop").Parse(desktopTemplate))
	template.Must(templates.New("changelog").Parse(changelogTemplate))
	template.Must(templates.New("copyright").Parse(copyrightTemplate))
}

// longDescription indents each line by one space; blank lines become " ."
func longDescription(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			out = append(out, " .")
			continue
		}
		out = append(out, " "+line)
	}
	return out
}

type datedMetadata struct {
	Meta *Metadata
	Date string
	Year int
}

func render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrapf(err, "render %s", name)
	}
	return buf.Bytes(), nil
}

// RenderControl renders DEBIAN/control
func RenderControl(m *Metadata) ([]byte, error) {
	return render("control", m)
}

// RenderDesktop renders the .desktop launcher entry
func RenderDesktop(m *Metadata) ([]byte, error) {
	return render("desktop", m)
}

// RenderChangelog renders the uncompressed changelog.Debian
func RenderChangelog(m *Metadata, at time.Time) ([]byte, error) {
	return render("changelog", datedMetadata{Meta: m, Date: at.Format(changelogDate), Year: at.Year()})
}

// RenderCopyright renders the machine-readable copyright file
func RenderCopyright(m *Metadata, at time.Time) ([]byte, error) {
	return render("copyright", datedMetadata{Meta: m, Date: at.Format(changelogDate), Year: at.Year()})
}
