// Package packaging builds Debian binary packages from a prebuilt executable
// using the system dpkg-deb.
package packaging

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Architectures lists the accepted Architecture values
var Architectures = []string{"amd64", "arm64", "armhf", "i386", "all"}

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9.-]`)
	repeatedDashes   = regexp.MustCompile(`--+`)
	versionPattern   = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*([+-][A-Za-z0-9.~+-]+)?$`)
	namePattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*$`)
)

// Metadata describes the package being built
type Metadata struct {
	Name             string `validate:"required,debname"`
	Version          string `validate:"required,debversion"`
	Architecture     string `validate:"required,oneof=amd64 arm64 armhf i386 all"`
	ShortDescription string `validate:"required,singleline"`
	LongDescription  string
	MaintainerName   string `validate:"required,singleline"`
	MaintainerEmail  string `validate:"required,email"`
	Depends          string `validate:"singleline"`
	Binary           string `validate:"required"`
	Icon             string
}

// CleanName lower-cases name and replaces anything Debian does not allow
// in a package name with a dash.
func CleanName(name string) string {
	clean := strings.ToLower(strings.TrimSpace(name))
	clean = invalidNameChars.ReplaceAllString(clean, "-")
	clean = repeatedDashes.ReplaceAllString(clean, "-")
	return strings.Trim(clean, "-")
}

// Normalize cleans the name and trims every field. An empty architecture
// becomes amd64.
func (m *Metadata) Normalize() {
	m.Name = CleanName(m.Name)
	m.Version = strings.TrimSpace(m.Version)
	m.Architecture = strings.TrimSpace(m.Architecture)
	if m.Architecture == "" {
		m.Architecture = "amd64"
	}
	m.ShortDescription = strings.TrimSpace(m.ShortDescription)
	m.LongDescription = strings.TrimRight(m.LongDescription, "\n")
	m.MaintainerName = strings.TrimSpace(m.MaintainerName)
	m.MaintainerEmail = strings.TrimSpace(m.MaintainerEmail)
	m.Depends = strings.TrimSpace(m.Depends)
	m.Binary = strings.TrimSpace(m.Binary)
	m.Icon = strings.TrimSpace(m.Icon)
}

// Maintainer renders the "Name <email>" form
func (m *Metadata) Maintainer() string {
	return fmt.Sprintf("%s <%s>", m.MaintainerName, m.MaintainerEmail)
}

// StagingDir is the directory tree handed to dpkg-deb
func (m *Metadata) StagingDir() string {
	return m.Name + "_" + m.Version
}

// DebFile is the output file name
func (m *Metadata) DebFile() string {
	return fmt.Sprintf("%s_%s_%s.deb", m.Name, m.Version, m.Architecture)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("debname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("debversion", func(fl validator.FieldLevel) bool {
		return versionPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

var fieldMessages = map[string]string{
	"debname":    "must contain only lower-case letters, digits, dots and dashes",
	"debversion": "must look like 1.0.0 or 1.0.0-1",
	"oneof":      "must be one of " + strings.Join(Architectures, ", "),
	"singleline": "must be a single line",
	"email":      "must be a valid e-mail address",
	"required":   "is required",
}

// Validate checks the metadata and returns one error naming every invalid
// field.
func (m *Metadata) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate metadata")
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		problems = append(problems, fe.Field()+" "+msg)
	}
	return errors.Errorf("invalid package metadata: %s", strings.Join(problems, "; "))
}
