package genesis

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"hex":      toHex,
	"prefix0x": prefix0x,
}

// NewTemplate parses text as a genesis template. Referencing a field the
// descriptor does not provide is a render error.
func NewTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return tmpl, nil
}

// ParseTemplate reads and parses the template at path.
func ParseTemplate(path string) (*template.Template, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return NewTemplate(filepath.Base(path), string(text))
}

// Render executes tmpl against d.Data().
func Render(w io.Writer, tmpl *template.Template, d *Descriptor) error {
	if err := tmpl.Execute(w, d.Data()); err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return nil
}

// toHex formats an integer as lowercase hex without prefix. Strings are
// taken as decimal.
func toHex(v any) (string, error) {
	switch n := v.(type) {
	case uint64:
		return strconv.FormatUint(n, 16), nil
	case int:
		if n < 0 {
			return "", fmt.Errorf("hex: negative value %d", n)
		}
		return strconv.FormatInt(int64(n), 16), nil
	case *big.Int:
		if n.Sign() < 0 {
			return "", fmt.Errorf("hex: negative value %s", n)
		}
		return n.Text(16), nil
	case string:
		b, ok := new(big.Int).SetString(n, 10)
		if !ok || b.Sign() < 0 {
			return "", fmt.Errorf("hex: %q is not a non-negative decimal", n)
		}
		return b.Text(16), nil
	}
	return "", fmt.Errorf("hex: unsupported type %T", v)
}

func prefix0x(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}
