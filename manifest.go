package ioc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Manifest is a declarative list of bindings, usually loaded from YAML:
//
//	env_files: [".env"]
//	bindings:
//	  - abstract: mailer
//	    concrete: SMTPMailer
//	  - abstract: greeting
//	    value: "hello ${USER_NAME}"
//	  - abstract: TmpITest
//	    method: setName
//	    parameters:
//	      test_interface: TmpITest2
//	      name: ${USER_NAME}
//
// String values may reference ${VAR}. Variables come from the env files,
// then from the process environment.
type Manifest struct {
	EnvFiles []string          `yaml:"env_files"`
	Bindings []ManifestBinding `yaml:"bindings"`

	source string
}

// ManifestBinding is one entry of a Manifest. Concrete and Value are
// mutually exclusive; with neither, the abstract is bound to itself.
type ManifestBinding struct {
	Abstract   string         `yaml:"abstract"`
	Concrete   string         `yaml:"concrete,omitempty"`
	Value      any            `yaml:"value,omitempty"`
	Method     string         `yaml:"method,omitempty"`
	Parameters map[string]any `yaml:"parameters,omitempty"`
	Positional []any          `yaml:"positional,omitempty"`
}

// ParseManifest decodes a YAML manifest. Env files are resolved relative
// to the working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	return parseManifest("<inline>", "", data)
}

// LoadManifest reads a YAML manifest from path. Env files are resolved
// relative to the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ManifestError{Source: path, Cause: err}
	}
	return parseManifest(path, filepath.Dir(path), data)
}

func parseManifest(source, dir string, data []byte) (*Manifest, error) {
	m := &Manifest{source: source}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, ManifestError{Source: source, Cause: err}
	}

	vars, err := readEnvFiles(dir, m.EnvFiles)
	if err != nil {
		return nil, ManifestError{Source: source, Cause: err}
	}
	lookup := func(name string) string {
		if v, ok := vars[name]; ok {
			return v
		}
		return os.Getenv(name)
	}

	for i := range m.Bindings {
		b := &m.Bindings[i]
		if err := b.validate(); err != nil {
			return nil, ManifestError{Source: source, Entry: entryName(i, b), Cause: err}
		}
		b.Concrete = os.Expand(b.Concrete, lookup)
		b.Value = expandValue(b.Value, lookup)
		for k, v := range b.Parameters {
			b.Parameters[k] = expandValue(v, lookup)
		}
		for j, v := range b.Positional {
			b.Positional[j] = expandValue(v, lookup)
		}
	}
	return m, nil
}

func readEnvFiles(dir string, files []string) (map[string]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	paths := make([]string, len(files))
	for i, f := range files {
		if dir != "" && !filepath.IsAbs(f) {
			f = filepath.Join(dir, f)
		}
		paths[i] = f
	}
	return godotenv.Read(paths...)
}

func (b *ManifestBinding) validate() error {
	if b.Abstract == "" {
		return errors.New("abstract cannot be empty")
	}
	if b.Concrete != "" && b.Value != nil {
		return errors.New("concrete and value are mutually exclusive")
	}
	if b.Value != nil && b.Method != "" {
		return errors.New("a value binding cannot have a method")
	}
	if b.Method == "" && (len(b.Parameters) > 0 || len(b.Positional) > 0) {
		return errors.New("parameters require a method")
	}
	return nil
}

func (b *ManifestBinding) target() Concrete {
	switch {
	case b.Value != nil:
		return Instance(b.Value)
	case b.Concrete != "":
		return TypeName(b.Concrete)
	default:
		return nil
	}
}

func (b *ManifestBinding) args() Args {
	var args Args
	for i, v := range b.Positional {
		args = args.At(i, v)
	}
	for k, v := range b.Parameters {
		if i, err := strconv.Atoi(k); err == nil && i >= 0 {
			args = args.At(i, v)
			continue
		}
		args = args.With(k, v)
	}
	return args
}

// Source returns where the manifest was read from.
func (m *Manifest) Source() string {
	return m.source
}

// Module returns the manifest as a ModuleOption named after its source.
func (m *Manifest) Module() ModuleOption {
	opts := make([]ModuleOption, 0, len(m.Bindings))
	for i := range m.Bindings {
		b := m.Bindings[i]
		if b.Method != "" {
			opts = append(opts, BindMethod(b.Abstract, b.Method, b.target(), b.args()))
			continue
		}
		opts = append(opts, Bind(b.Abstract, b.target()))
	}
	return NewModule("manifest "+m.source, opts...)
}

// Apply registers every binding of the manifest on c.
func (m *Manifest) Apply(c *Container) error {
	if err := c.Install(m.Module()); err != nil {
		return ManifestError{Source: m.source, Cause: err}
	}
	return nil
}

func entryName(i int, b *ManifestBinding) string {
	if b.Abstract == "" {
		return fmt.Sprintf("#%d", i)
	}
	if b.Method != "" {
		return owner(b.Abstract, b.Method)
	}
	return b.Abstract
}

func expandValue(v any, lookup func(string) string) any {
	switch x := v.(type) {
	case string:
		return os.Expand(x, lookup)
	case []any:
		for i := range x {
			x[i] = expandValue(x[i], lookup)
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = expandValue(x[k], lookup)
		}
		return x
	default:
		return v
	}
}
