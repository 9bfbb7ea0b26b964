package roadmap

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/haierkeys/fast-roadmap-service/pkg/fileurl"

	"github.com/pkg/errors"
)

// ExportFileName default file name of an exported roadmap
const ExportFileName = "roadmap.json"

// WriteJSON writes the id -> node mapping as a 2-space indented object, keys in insertion order
// WriteJSON 以两空格缩进写出 id -> 节点映射，键按插入顺序排列
func WriteJSON(w io.Writer, t *Tree) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range t.Nodes() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n.ID)
		if err != nil {
			return errors.Wrapf(err, "encode key %s", n.ID)
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")

		var nb bytes.Buffer
		enc := json.NewEncoder(&nb)
		enc.SetEscapeHTML(false)
		enc.SetIndent("  ", "  ")
		if err := enc.Encode(n); err != nil {
			return errors.Wrapf(err, "encode node %s", n.ID)
		}
		buf.Write(bytes.TrimRight(nb.Bytes(), "\n"))
	}
	if t.Len() > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadJSON parses an exported roadmap keeping the key order. The mapping key is the node id.
// ReadJSON 解析导出的路线图并保留键顺序，映射键即节点 id
func ReadJSON(r io.Reader) (*Tree, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidFile, err.Error())
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Wrap(ErrInvalidFile, "top level is not an object")
	}

	t := NewTree()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(ErrInvalidFile, err.Error())
		}
		key, _ := tok.(string)
		var n Node
		if err := dec.Decode(&n); err != nil {
			return nil, errors.Wrapf(ErrInvalidFile, "node %s: %v", key, err)
		}
		n.ID = key
		t.Put(&n)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(ErrInvalidFile, err.Error())
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrInvalidFile, "trailing data after roadmap object")
	}
	return t, nil
}

// Export writes the whole roadmap as JSON
func (e *Engine) Export(w io.Writer) error {
	return WriteJSON(w, e.tree)
}

// ExportFile writes the roadmap to path, replacing it atomically
// ExportFile 将路线图原子写入 path
func (e *Engine) ExportFile(path string) error {
	var buf bytes.Buffer
	if err := e.Export(&buf); err != nil {
		return err
	}
	return fileurl.WriteFileAtomic(path, buf.Bytes(), 0644)
}

// Import replaces the model wholesale. Invalid input returns ErrInvalidFile and keeps the current model.
// Import 整体替换本地模型；输入无效时返回 ErrInvalidFile 且不修改当前模型
func (e *Engine) Import(r io.Reader) error {
	t, err := ReadJSON(r)
	if err != nil {
		return err
	}
	e.replaceTree(t)
	return nil
}

// ImportFile imports the roadmap stored at path
func (e *Engine) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return e.Import(f)
}
