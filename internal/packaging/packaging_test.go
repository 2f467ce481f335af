package packaging

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// fakeRunner records commands. dpkg-deb builds write a stub .deb.
type fakeRunner struct {
	calls []call
	fail  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if err := f.fail[name]; err != nil {
		return []byte("boom"), err
	}
	if name == "fakeroot" && len(args) == 4 {
		return nil, os.WriteFile(args[3], []byte("deb"), 0o644)
	}
	return nil, nil
}

func lookPath(available ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, a := range available {
			if a == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func newTestBuilder(t *testing.T, tools ...string) (*Builder, *fakeRunner) {
	t.Helper()
	log, _ := test.NewNullLogger()
	runner := &fakeRunner{}
	return &Builder{
		WorkDir:  t.TempDir(),
		Runner:   runner,
		LookPath: lookPath(tools...),
		Now:      func() time.Time { return time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC) },
		Log:      log,
	}, runner
}

func writeBinary(t *testing.T, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func validMetadata(binary string) *Metadata {
	return &Metadata{
		Name:             "Inventario App",
		Version:          "1.2.0-1",
		ShortDescription: "Small shop inventory",
		MaintainerName:   "Ana Pérez",
		MaintainerEmail:  "ana@example.com",
		Binary:           binary,
	}
}

func TestCleanName(t *testing.T) {
	cases := map[string]string{
		"My App":          "my-app",
		"  Inventario_2 ": "inventario-2",
		"--weird!!name--": "weird-name",
		"a.b-c":           "a.b-c",
		"ÁRBOL":           "rbol",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanName(in), in)
	}
}

func TestMetadataValidate(t *testing.T) {
	m := validMetadata("/bin/true")
	m.Normalize()
	require.NoError(t, m.Validate())
	assert.Equal(t, "inventario-app", m.Name)
	assert.Equal(t, "amd64", m.Architecture)
	assert.Equal(t, "inventario-app_1.2.0-1", m.StagingDir())
	assert.Equal(t, "inventario-app_1.2.0-1_amd64.deb", m.DebFile())

	for _, v := range []string{"1", "1.0.0", "2.3+dfsg", "1.0-rc1~2"} {
		m.Version = v
		assert.NoError(t, m.Validate(), v)
	}
}

func TestMetadataValidate_Errors(t *testing.T) {
	m := &Metadata{
		Name:             "ok",
		Version:          "v1.0",
		Architecture:     "sparc",
		ShortDescription: "two\nlines",
		MaintainerName:   "Ana",
		MaintainerEmail:  "not-an-email",
		Binary:           "/bin/true",
	}
	err := m.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "Version must look like")
	assert.Contains(t, msg, "Architecture must be one of amd64")
	assert.Contains(t, msg, "ShortDescription must be a single line")
	assert.Contains(t, msg, "MaintainerEmail must be a valid e-mail")

	for _, v := range []string{"1.0~rc1-2", "1.0.", "-1"} {
		m.Version = v
		err = m.Validate()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "Version must look like", v)
	}

	m = &Metadata{}
	err = m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name is required")
	assert.Contains(t, err.Error(), "Binary is required")
}

func TestRenderControl(t *testing.T) {
	m := validMetadata("/bin/true")
	m.Normalize()

	out, err := RenderControl(m)
	require.NoError(t, err)
	assert.Equal(t, `Package: inventario-app
Version: 1.2.0-1
Architecture: amd64
Maintainer: Ana Pérez <ana@example.com>
Priority: optional
Section: misc
Description: Small shop inventory
`, string(out))

	m.Depends = "libc6, libgtk-3-0"
	m.LongDescription = "Tracks products.\n\nPrints receipts."
	out, err = RenderControl(m)
	require.NoError(t, err)
	assert.Equal(t, `Package: inventario-app
Version: 1.2.0-1
Architecture: amd64
Maintainer: Ana Pérez <ana@example.com>
Depends: libc6, libgtk-3-0
Priority: optional
Section: misc
Description: Small shop inventory
 Tracks products.
 .
 Prints receipts.
`, string(out))
}

func TestRenderChangelogAndCopyright(t *testing.T) {
	m := validMetadata("/bin/true")
	m.Normalize()
	at := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

	out, err := RenderChangelog(m, at)
	require.NoError(t, err)
	assert.Equal(t, "inventario-app (1.2.0-1) unstable; urgency=low\n\n  * Initial release\n\n -- Ana Pérez <ana@example.com>  Fri, 17 May 2024 10:30:00 +0000\n", string(out))

	out, err = RenderCopyright(m, at)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Copyright: 2024 Ana Pérez <ana@example.com>")
	assert.Contains(t, string(out), "License: GPL-3+")

	out, err = RenderDesktop(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Exec=inventario-app\n")
}

func TestCheckDependencies(t *testing.T) {
	b, _ := newTestBuilder(t, "dpkg-deb")
	err := b.CheckDependencies()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fakeroot, gzip")

	b, _ = newTestBuilder(t, RequiredTools...)
	assert.NoError(t, b.CheckDependencies())
}

func TestBuild(t *testing.T) {
	b, runner := newTestBuilder(t, "dpkg-deb", "fakeroot", "gzip")
	m := validMetadata(writeBinary(t, 0o700))
	m.Depends = "libc6"

	result, err := b.Build(context.Background(), m, false)
	require.NoError(t, err)

	dir := filepath.Join(b.WorkDir, "inventario-app_1.2.0-1")
	assert.Equal(t, dir, result.StagingDir)
	assert.Equal(t, filepath.Join(b.WorkDir, "inventario-app_1.2.0-1_amd64.deb"), result.DebPath)
	assert.Equal(t, int64(3), result.Size)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "fakeroot", runner.calls[0].name)
	assert.Equal(t, []string{"dpkg-deb", "--build", dir, result.DebPath}, runner.calls[0].args)

	modes := map[string]os.FileMode{
		"DEBIAN/control":                                          0o644,
		"DEBIAN/postinst":                                         0o755,
		"DEBIAN/prerm":                                            0o755,
		"usr/bin/inventario-app":                                  0o755,
		"usr/share/applications/inventario-app.desktop":           0o644,
		"usr/share/doc/inventario-app/changelog.Debian.gz":        0o644,
		"usr/share/doc/inventario-app/copyright":                  0o644,
		"usr/share/icons/hicolor/256x256/apps/inventario-app.png": 0o644,
	}
	for rel, mode := range modes {
		info, err := os.Stat(filepath.Join(dir, rel))
		require.NoError(t, err, rel)
		assert.Equal(t, mode, info.Mode().Perm(), rel)
	}

	control, err := os.ReadFile(filepath.Join(dir, "DEBIAN", "control"))
	require.NoError(t, err)
	assert.Contains(t, string(control), "Depends: libc6\n")

	gz, err := os.ReadFile(filepath.Join(dir, "usr/share/doc/inventario-app/changelog.Debian.gz"))
	require.NoError(t, err)
	zr, err := gzip.NewReader(bytes.NewReader(gz))
	require.NoError(t, err)
	changelog, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(changelog), "inventario-app (1.2.0-1) unstable"))

	icon, err := os.ReadFile(filepath.Join(dir, "usr/share/icons/hicolor/256x256/apps/inventario-app.png"))
	require.NoError(t, err)
	assert.Empty(t, icon)
}

func TestBuild_Clean(t *testing.T) {
	b, _ := newTestBuilder(t, RequiredTools...)
	result, err := b.Build(context.Background(), validMetadata(writeBinary(t, 0o755)), true)
	require.NoError(t, err)
	assert.Empty(t, result.StagingDir)
	_, err = os.Stat(filepath.Join(b.WorkDir, "inventario-app_1.2.0-1"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, result.DebPath)
}

func TestBuild_Rejects(t *testing.T) {
	b, runner := newTestBuilder(t, RequiredTools...)

	_, err := b.Build(context.Background(), validMetadata(writeBinary(t, 0o644)), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not executable")

	_, err = b.Build(context.Background(), validMetadata(filepath.Join(t.TempDir(), "missing")), false)
	require.Error(t, err)

	b.LookPath = lookPath("dpkg-deb")
	_, err = b.Build(context.Background(), validMetadata(writeBinary(t, 0o755)), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing dependencies")
	assert.Empty(t, runner.calls)
}

func TestBuild_DpkgFailure(t *testing.T) {
	b, runner := newTestBuilder(t, RequiredTools...)
	runner.fail = map[string]error{"fakeroot": errors.New("exit status 2")}

	_, err := b.Build(context.Background(), validMetadata(writeBinary(t, 0o755)), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build package")
	assert.DirExists(t, filepath.Join(b.WorkDir, "inventario-app_1.2.0-1"))
}

func TestPlaceIcon(t *testing.T) {
	png := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(png, []byte("png-bytes"), 0o644))
	svg := filepath.Join(t.TempDir(), "logo.svg")
	require.NoError(t, os.WriteFile(svg, []byte("<svg/>"), 0o644))

	t.Run("convert resizes the icon", func(t *testing.T) {
		b, runner := newTestBuilder(t, "convert")
		dest := filepath.Join(b.WorkDir, "icon.png")
		b.placeIcon(context.Background(), &Metadata{Name: "app", Icon: svg}, dest)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{svg, "-resize", "256x256", dest}, runner.calls[0].args)
	})

	t.Run("png is copied without convert", func(t *testing.T) {
		b, runner := newTestBuilder(t)
		dest := filepath.Join(b.WorkDir, "icon.png")
		b.placeIcon(context.Background(), &Metadata{Name: "app", Icon: png}, dest)
		assert.Empty(t, runner.calls)
		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("failed convert falls back to a placeholder", func(t *testing.T) {
		b, runner := newTestBuilder(t, "convert")
		runner.fail = map[string]error{"convert": errors.New("no delegate")}
		dest := filepath.Join(b.WorkDir, "icon.png")
		b.placeIcon(context.Background(), &Metadata{Name: "app", Icon: svg}, dest)
		require.Len(t, runner.calls, 2)
		assert.Equal(t, "xc:lightblue", runner.calls[1].args[2])
		assert.FileExists(t, dest)
	})

	t.Run("non-png without convert gives an empty file", func(t *testing.T) {
		b, runner := newTestBuilder(t)
		dest := filepath.Join(b.WorkDir, "icon.png")
		b.placeIcon(context.Background(), &Metadata{Name: "app", Icon: svg}, dest)
		assert.Empty(t, runner.calls)
		info, err := os.Stat(dest)
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})

	t.Run("missing icon draws a placeholder", func(t *testing.T) {
		b, runner := newTestBuilder(t, "convert")
		dest := filepath.Join(b.WorkDir, "icon.png")
		b.placeIcon(context.Background(), &Metadata{Name: "app", Icon: "/nope.png"}, dest)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, "app", runner.calls[0].args[len(runner.calls[0].args)-2])
	})
}
