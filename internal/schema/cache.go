package schema

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LoadCache reads a binary cache snapshot written by SaveCache, per the
// exact little-endian, length-prefixed layout in spec.md §6.
func LoadCache(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	typeCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("schema: reading cache type count: %w", err)
	}

	types := make(map[string]*Type, typeCount)
	for i := uint32(0); i < typeCount; i++ {
		t, err := readType(r)
		if err != nil {
			return nil, fmt.Errorf("schema: reading cache entry %d: %w", i, err)
		}
		types[t.Name] = t
	}

	return buildStore(types)
}

// SaveCache writes store's full type set to path in the binary layout
// spec.md §6 specifies: a type count, then per type its flags and methods.
func SaveCache(store *Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeU32(w, uint32(len(store.types))); err != nil {
		return err
	}
	for _, t := range store.types {
		if err := writeType(w, t); err != nil {
			return err
		}
	}
	return w.Flush()
}

// CacheStale reports whether any file in defDir is newer than the cache
// file at cachePath — spec.md §6's "cache is refreshed when any definition
// file is newer than the cache file" rule. A missing cache file, or a
// definition directory that cannot be read, is treated as stale.
func CacheStale(defDir, cachePath string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return true
	}
	entries, err := os.ReadDir(defDir)
	if err != nil {
		return true
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return true
		}
		if info.ModTime().After(cacheInfo.ModTime()) {
			return true
		}
	}
	return false
}

func readType(r io.Reader) (*Type, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	builtin, err := readBool(r)
	if err != nil {
		return nil, err
	}
	nocopy, err := readBool(r)
	if err != nil {
		return nil, err
	}
	extends, err := readString(r)
	if err != nil {
		return nil, err
	}
	aliasOf, err := readString(r)
	if err != nil {
		return nil, err
	}
	methodCount, err := readU32(r)
	if err != nil {
		return nil, err
	}

	t := &Type{Name: name, Builtin: builtin, NoCopy: nocopy, Extends: extends, AliasOf: aliasOf}
	for i := uint32(0); i < methodCount; i++ {
		m, err := readMethod(r)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		t.Methods = append(t.Methods, m)
	}
	return t, nil
}

func readMethod(r io.Reader) (Method, error) {
	name, err := readString(r)
	if err != nil {
		return Method{}, err
	}
	ret, err := readString(r)
	if err != nil {
		return Method{}, err
	}
	shared, err := readBool(r)
	if err != nil {
		return Method{}, err
	}
	var kindByte [1]byte
	if _, err := io.ReadFull(r, kindByte[:]); err != nil {
		return Method{}, err
	}
	mappingValue, err := readString(r)
	if err != nil {
		return Method{}, err
	}
	paramCount, err := readU32(r)
	if err != nil {
		return Method{}, err
	}

	m := Method{
		Name:         name,
		Return:       ret,
		Shared:       shared,
		Mapping:      MappingKind(kindByte[0]),
		MappingValue: mappingValue,
	}
	for i := uint32(0); i < paramCount; i++ {
		p, err := readParam(r)
		if err != nil {
			return Method{}, fmt.Errorf("param %d: %w", i, err)
		}
		m.Params = append(m.Params, p)
	}
	return m, nil
}

func readParam(r io.Reader) (Param, error) {
	typ, err := readString(r)
	if err != nil {
		return Param{}, err
	}
	name, err := readString(r)
	if err != nil {
		return Param{}, err
	}
	return Param{Type: typ, Name: name}, nil
}

func writeType(w io.Writer, t *Type) error {
	if err := writeString(w, t.Name); err != nil {
		return err
	}
	if err := writeBool(w, t.Builtin); err != nil {
		return err
	}
	if err := writeBool(w, t.NoCopy); err != nil {
		return err
	}
	if err := writeString(w, t.Extends); err != nil {
		return err
	}
	if err := writeString(w, t.AliasOf); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(t.Methods))); err != nil {
		return err
	}
	for i := range t.Methods {
		if err := writeMethod(w, &t.Methods[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeMethod(w io.Writer, m *Method) error {
	if err := writeString(w, m.Name); err != nil {
		return err
	}
	if err := writeString(w, m.Return); err != nil {
		return err
	}
	if err := writeBool(w, m.Shared); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(m.Mapping)}); err != nil {
		return err
	}
	if err := writeString(w, m.MappingValue); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(m.Params))); err != nil {
		return err
	}
	for _, p := range m.Params {
		if err := writeString(w, p.Type); err != nil {
			return err
		}
		if err := writeString(w, p.Name); err != nil {
			return err
		}
	}
	return nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeBool(w io.Writer, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}
