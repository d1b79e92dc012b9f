package bch

import (
	"fmt"
	"io"

	"github.com/deepteams/bch/internal/binio"
)

// File is a fully decoded BCH container: the file header plus every
// model the content directory names.
type File struct {
	Header Header
	Models []Model
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a BCH container from r and materializes its models.
//
// The whole stream is buffered: the relocation pass rewrites the
// file's section-relative pointers into absolute offsets in place,
// and every later read treats pointers as absolute positions into
// that buffer.
func Decode(r io.Reader) (*File, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("bch: reading data: %w", err)
	}
	return decodeBytes(data)
}

func decodeBytes(data []byte) (*File, error) {
	cur := binio.NewReader(data)
	header, err := parseHeader(cur)
	if err != nil {
		return nil, fmt.Errorf("bch: header: %w", err)
	}

	if err := relocate(header, data); err != nil {
		return nil, fmt.Errorf("bch: relocating: %w", err)
	}

	cur = binio.NewReader(data)
	cur.Seek(int64(header.ContentsAddress))
	contents, err := parseContentHeader(cur)
	if err != nil {
		return nil, err
	}

	cur.Seek(int64(contents.Models.PointerTableOffset))
	models, err := binio.PointerTable(cur, contents.Models.PointerTableEntries, parseModel)
	if err != nil {
		return nil, fmt.Errorf("bch: models: %w", err)
	}

	return &File{Header: *header, Models: models}, nil
}

// Info summarizes a container without keeping vertex data alive.
type Info struct {
	ConverterVersion uint16
	BackwardCompat   uint8
	ForwardCompat    uint8
	ModelCount       int
	MeshCount        int
	VertexCount      int
	ModelNames       []string
}

// GetInfo decodes r and reports structural counts. It runs the full
// decode pipeline (the vertex walk is what discovers mesh sizes) but
// returns only the summary.
func GetInfo(r io.Reader) (*Info, error) {
	f, err := Decode(r)
	if err != nil {
		return nil, err
	}
	info := &Info{
		ConverterVersion: f.Header.ConverterVersion,
		BackwardCompat:   f.Header.BackwardCompat,
		ForwardCompat:    f.Header.ForwardCompat,
		ModelCount:       len(f.Models),
	}
	for _, m := range f.Models {
		info.ModelNames = append(info.ModelNames, m.Name)
		info.MeshCount += len(m.Meshes)
		for _, o := range m.Meshes {
			info.VertexCount += len(o.Vertices)
		}
	}
	return info, nil
}
