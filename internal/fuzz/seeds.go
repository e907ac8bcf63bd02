package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"initcheck/internal/schema"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 1 << 16
)

// seedDocs are small YAML documents covering each statement kind.
var seedDocs = []string{
	"",
	"types: []\n",
	`types:
  - name: Point
    kind: struct
    properties:
      - {name: x}
      - {name: "y", default: true}
`,
	`types:
  - name: Base
    kind: class
    properties: [{name: id}]
    initializers:
      - params: [{name: id}]
        body: [{op: assign, property: id}]
  - name: Child
    kind: class
    superclass: Base
    properties: [{name: tag, mutable: true}]
    initializers:
      - role: convenience
        body:
          - {op: self.init, args: [id]}
      - failure: failable
        params: [{name: id}]
        body:
          - {op: return-nil}
          - {op: assign, property: tag}
          - {op: super.init, args: [id]}
          - {op: effect, text: "log(self)"}
`,
	`types:
  - {name: A, kind: class, superclass: B}
  - {name: B, kind: class, superclass: A}
`,
}

// addCorpusSeeds adds the built-in seeds plus every document under the
// repository's testdata directories, encoded as YAML.
func addCorpusSeeds(f *testing.F) {
	for _, s := range seedDocs {
		f.Add([]byte(s))
	}
	root := filepath.Join("..", "..", "internal")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Base(filepath.Dir(path)) != "testdata" {
			return nil
		}
		doc, err := schema.DecodeFile(path)
		if err != nil {
			return nil
		}
		data, err := schema.Encode(doc, schema.FormatYAML)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(data))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
