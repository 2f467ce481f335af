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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RequiredTools must be on PATH for a build
var RequiredTools = []string{"dpkg-deb", "fakeroot", "gzip"}

// Runner executes an external command and returns its combined output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec in the current directory
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, "%s %s", name, strings.Join(args, " "))
	}
	return out, nil
}

// Builder stages and builds packages under WorkDir
type Builder struct {
	WorkDir  string
	Runner   Runner
	LookPath func(file string) (string, error)
	Now      func() time.Time
	Log      logrus.FieldLogger
}

// NewBuilder creates a builder that runs real commands in workDir
func NewBuilder(workDir string, log logrus.FieldLogger) *Builder {
	return &Builder{
		WorkDir:  workDir,
		Runner:   ExecRunner{},
		LookPath: exec.LookPath,
		Now:      time.Now,
		Log:      log,
	}
}

// Result describes a finished build
type Result struct {
	StagingDir string
	DebPath    string
	Size       int64
}

// CheckDependencies reports every required tool missing from PATH
func (b *Builder) CheckDependencies() error {
	var missing []string
	for _, tool := range RequiredTools {
		if _, err := b.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing dependencies: %s (install with: sudo apt install dpkg-dev fakeroot)", strings.Join(missing, ", "))
	}
	return nil
}

// Build stages the package tree and runs fakeroot dpkg-deb on it. The
// staging directory is removed afterwards when clean is set.
func (b *Builder) Build(ctx context.Context, m *Metadata, clean bool) (*Result, error) {
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := checkExecutable(m.Binary); err != nil {
		return nil, err
	}
	if err := b.CheckDependencies(); err != nil {
		return nil, err
	}

	dir, err := b.Stage(ctx, m)
	if err != nil {
		return nil, err
	}

	deb := filepath.Join(b.WorkDir, m.DebFile())
	log := b.Log.WithFields(logrus.Fields{"package": m.Name, "version": m.Version, "arch": m.Architecture})
	log.Info("building package")
	if out, err := b.Runner.Run(ctx, "fakeroot", "dpkg-deb", "--build", dir, deb); err != nil {
		log.WithField("output", string(out)).Error("dpkg-deb failed")
		return nil, errors.Wrap(err, "build package")
	}

	result := &Result{StagingDir: dir, DebPath: deb}
	if info, err := os.Stat(deb); err == nil {
		result.Size = info.Size()
	}

	if clean {
		if err := os.RemoveAll(dir); err != nil {
			return nil, errors.Wrap(err, "remove staging directory")
		}
		result.StagingDir = ""
	}
	log.WithField("deb", deb).Info("package built")
	return result, nil
}

// Stage lays out the package tree, replacing any previous one, and returns
// its path.
func (b *Builder) Stage(ctx context.Context, m *Metadata) (string, error) {
	dir := filepath.Join(b.WorkDir, m.StagingDir())
	if err := os.RemoveAll(dir); err != nil {
		return "", errors.Wrap(err, "clear staging directory")
	}

	docDir := filepath.Join(dir, "usr", "share", "doc", m.Name)
	iconDir := filepath.Join(dir, "usr", "share", "icons", "hicolor", "256x256", "apps")
	for _, d := range []string{
		filepath.Join(dir, "DEBIAN"),
		filepath.Join(dir, "usr", "bin"),
		filepath.Join(dir, "usr", "share", "applications"),
		docDir,
		iconDir,
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", errors.Wrapf(err, "create %s", d)
		}
	}

	if err := copyFile(m.Binary, filepath.Join(dir, "usr", "bin", m.Name), 0o755); err != nil {
		return "", errors.Wrap(err, "copy binary")
	}
	b.placeIcon(ctx, m, filepath.Join(iconDir, m.Name+".png"))

	now := b.Now()
	control, err := RenderControl(m)
	if err != nil {
		return "", err
	}
	desktop, err := RenderDesktop(m)
	if err != nil {
		return "", err
	}
	changelog, err := RenderChangelog(m, now)
	if err != nil {
		return "", err
	}
	changelogGz, err := gzipBytes(changelog)
	if err != nil {
		return "", err
	}
	copyright, err := RenderCopyright(m, now)
	if err != nil {
		return "", err
	}
	postinst, err := render("postinst", m)
	if err != nil {
		return "", err
	}
	prerm, err := render("prerm", m)
	if err != nil {
		return "", err
	}

	files := []struct {
		path string
		data []byte
		mode os.FileMode
	}{
		{filepath.Join(dir, "DEBIAN", "control"), control, 0o644},
		{filepath.Join(dir, "DEBIAN", "postinst"), postinst, 0o755},
		{filepath.Join(dir, "DEBIAN", "prerm"), prerm, 0o755},
		{filepath.Join(dir, "usr", "share", "applications", m.Name+".desktop"), desktop, 0o644},
		{filepath.Join(docDir, "changelog.Debian.gz"), changelogGz, 0o644},
		{filepath.Join(docDir, "copyright"), copyright, 0o644},
	}
	for _, f := range files {
		if err := writeFile(f.path, f.data, f.mode); err != nil {
			return "", err
		}
	}

	b.Log.WithField("dir", dir).Debug("package tree staged")
	return dir, nil
}

// placeIcon resizes or copies the icon, or draws a placeholder. It never
// fails the build; the worst case is an empty icon file.
func (b *Builder) placeIcon(ctx context.Context, m *Metadata, dest string) {
	_, convertErr := b.LookPath("convert")
	hasConvert := convertErr == nil
	log := b.Log.WithField("icon", m.Icon)

	if m.Icon != "" {
		if _, err := os.Stat(m.Icon); err != nil {
			log.Warn("icon file not found, generating a placeholder")
		} else if hasConvert {
			if _, err := b.Runner.Run(ctx, "convert", m.Icon, "-resize", "256x256", dest); err == nil {
				return
			}
			log.Warn("could not convert icon, generating a placeholder")
		} else if strings.EqualFold(filepath.Ext(m.Icon), ".png") {
			if err := copyFile(m.Icon, dest, 0o644); err == nil {
				return
			}
			log.Warn("could not copy icon, generating a placeholder")
		} else {
			log.Warn("ImageMagick is required to convert non-png icons, generating a placeholder")
		}
	}

	if hasConvert {
		_, err := b.Runner.Run(ctx, "convert", "-size", "256x256", "xc:lightblue",
			"-gravity", "center", "-pointsize", "32", "-fill", "darkblue",
			"-annotate", "0", m.Name, dest)
		if err == nil {
			return
		}
		b.Log.WithError(err).Warn("could not draw placeholder icon")
	} else {
		b.Log.Warn("install ImageMagick to generate icons: sudo apt install imagemagick")
	}
	if err := writeFile(dest, nil, 0o644); err != nil {
		b.Log.WithError(err).Warn("could not create empty icon")
	}
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "binary %s", path)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("binary %s is not a regular file", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return errors.Errorf("binary %s is not executable", path)
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copy %s", src)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "close %s", dst)
	}
	return errors.Wrapf(os.Chmod(dst, mode), "chmod %s", dst)
}

func writeFile(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, data, mode); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	// WriteFile leaves the mode of an existing file alone and is subject to umask
	return errors.Wrapf(os.Chmod(path, mode), "chmod %s", path)
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, errors.Wrap(err, "compress changelog")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "compress changelog")
	}
	return buf.Bytes(), nil
}
