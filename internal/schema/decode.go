package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatYAML
	FormatTOML
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatMsgpack:
		return "msgpack"
	}
	return "unknown"
}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("unknown document format %q", s)
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, bool) {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	return f, err == nil
}

// Supported reports whether path has a document extension.
func Supported(path string) bool {
	_, ok := FormatForPath(path)
	return ok
}

// ErrInvalid marks documents that decoded but failed validation.
var ErrInvalid = errors.New("invalid document")

// DecodeFile reads and decodes the document at path.
func DecodeFile(path string) (*Document, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported document extension %q", path, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode parses data, normalizes identifiers and validates the result.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &doc)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown field %q", undecoded[0].String())
			}
		}
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unknown document format %d", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	doc.normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode writes doc in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatMsgpack:
		return msgpack.Marshal(doc)
	}
	return nil, fmt.Errorf("unknown document format %d", format)
}

// Validate checks the struct tags of the whole document.
func (d *Document) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Document.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (value %q)", field, fe.Tag(), fe.Param(), fmt.Sprint(fe.Value())))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s (value %q)", field, fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func nfc(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

func (d *Document) normalize() {
	for i := range d.Types {
		t := &d.Types[i]
		t.Name = nfc(t.Name)
		t.Module = nfc(t.Module)
		t.Superclass = nfc(t.Superclass)
		t.Kind = strings.ToLower(t.Kind)
		for j := range t.Properties {
			t.Properties[j].Name = nfc(t.Properties[j].Name)
		}
		for j := range t.Initializers {
			in := &t.Initializers[j]
			in.Role = strings.ToLower(in.Role)
			in.Failure = strings.ToLower(in.Failure)
			for k := range in.Params {
				in.Params[k].Label = nfc(in.Params[k].Label)
				in.Params[k].Name = nfc(in.Params[k].Name)
			}
			for k := range in.Body {
				st := &in.Body[k]
				st.Op = strings.ToLower(st.Op)
				st.Property = nfc(st.Property)
				for a := range st.Args {
					st.Args[a] = nfc(st.Args[a])
				}
			}
		}
	}
}
