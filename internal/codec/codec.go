package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// FormatVersion is the current artifact format version.
const FormatVersion uint32 = 1

const (
	headerSize        = 16
	sectionHeaderSize = 12
	digestSize        = 32

	// MaxSections bounds the section count accepted by Decode.
	MaxSections = 64
)

var (
	// ErrFormatVersionMismatch reports an artifact written with a different
	// format version.
	ErrFormatVersionMismatch = errors.New("codec: format version mismatch")

	// ErrConfigurationMismatch reports an artifact for another curve
	// configuration.
	ErrConfigurationMismatch = errors.New("codec: configuration mismatch")

	// ErrMalformedEncoding reports truncated, corrupted or structurally
	// invalid input.
	ErrMalformedEncoding = errors.New("codec: malformed encoding")
)

// Section is one length-prefixed payload block.
type Section struct {
	Tag  uint32
	Data []byte
}

// Frame is a decoded artifact.
type Frame struct {
	Version  uint32
	Curve    uint32
	Kind     uint32
	Sections []Section
}

// Encode serializes f deterministically. The Version field is ignored; the
// current FormatVersion is always written.
func Encode(f Frame) []byte {
	size := headerSize + digestSize
	for _, s := range f.Sections {
		size += sectionHeaderSize + len(s.Data)
	}
	buf := make([]byte, 0, size)
	buf = binary.BigEndian.AppendUint32(buf, FormatVersion)
	buf = binary.BigEndian.AppendUint32(buf, f.Curve)
	buf = binary.BigEndian.AppendUint32(buf, f.Kind)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(f.Sections)))
	for _, s := range f.Sections {
		buf = binary.BigEndian.AppendUint32(buf, s.Tag)
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(s.Data)))
		buf = append(buf, s.Data...)
	}
	sum := blake3.Sum256(buf)
	return append(buf, sum[:]...)
}

// Decode parses and validates buf. The returned sections alias buf.
func Decode(buf []byte, curve, kind uint32) (*Frame, error) {
	if len(buf) < headerSize+digestSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the minimal artifact", ErrMalformedEncoding, len(buf))
	}
	version := binary.BigEndian.Uint32(buf[0:4])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFormatVersionMismatch, version, FormatVersion)
	}
	gotCurve := binary.BigEndian.Uint32(buf[4:8])
	if gotCurve != curve {
		return nil, fmt.Errorf("%w: artifact tag %d, want %d", ErrConfigurationMismatch, gotCurve, curve)
	}
	gotKind := binary.BigEndian.Uint32(buf[8:12])
	if gotKind != kind {
		return nil, fmt.Errorf("%w: artifact kind %d, want %d", ErrMalformedEncoding, gotKind, kind)
	}

	body := buf[:len(buf)-digestSize]
	want := blake3.Sum256(body)
	if !bytes.Equal(want[:], buf[len(body):]) {
		return nil, fmt.Errorf("%w: digest mismatch", ErrMalformedEncoding)
	}

	count := binary.BigEndian.Uint32(buf[12:16])
	if count > MaxSections {
		return nil, fmt.Errorf("%w: %d sections exceeds limit %d", ErrMalformedEncoding, count, MaxSections)
	}

	f := &Frame{Version: version, Curve: gotCurve, Kind: gotKind, Sections: make([]Section, 0, count)}
	rest := body[headerSize:]
	for i := uint32(0); i < count; i++ {
		if len(rest) < sectionHeaderSize {
			return nil, fmt.Errorf("%w: section %d header truncated", ErrMalformedEncoding, i)
		}
		tag := binary.BigEndian.Uint32(rest[0:4])
		n := binary.BigEndian.Uint64(rest[4:12])
		rest = rest[sectionHeaderSize:]
		if n > uint64(len(rest)) {
			return nil, fmt.Errorf("%w: section %d declares %d bytes, %d remain", ErrMalformedEncoding, i, n, len(rest))
		}
		f.Sections = append(f.Sections, Section{Tag: tag, Data: rest[:n:n]})
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedEncoding, len(rest))
	}
	return f, nil
}

// Section returns the data of the first section tagged tag.
func (f *Frame) Section(tag uint32) ([]byte, error) {
	for _, s := range f.Sections {
		if s.Tag == tag {
			return s.Data, nil
		}
	}
	return nil, fmt.Errorf("%w: missing section %d", ErrMalformedEncoding, tag)
}

// Capture serializes a collaborator object into a section.
func Capture(tag uint32, w io.WriterTo) (Section, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return Section{}, fmt.Errorf("codec: section %d: %w", tag, err)
	}
	return Section{Tag: tag, Data: buf.Bytes()}, nil
}

// Restore decodes data into dst. Unconsumed trailing bytes and panics inside
// the collaborator decoder are reported as ErrMalformedEncoding.
func Restore(data []byte, dst io.ReaderFrom) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: decoder panic: %v", ErrMalformedEncoding, r)
		}
	}()
	rd := bytes.NewReader(data)
	if _, err := dst.ReadFrom(rd); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if rd.Len() != 0 {
		return fmt.Errorf("%w: %d of %d bytes left unread", ErrMalformedEncoding, rd.Len(), len(data))
	}
	return nil
}

// RestoreSection runs check over the section tagged tag and, if it passes,
// decodes the section into dst. check sees the raw bytes before any
// collaborator decoder allocates from them.
func (f *Frame) RestoreSection(tag uint32, check func([]byte) error, dst io.ReaderFrom) error {
	data, err := f.Section(tag)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(data); err != nil {
			return fmt.Errorf("%w: section %d: %v", ErrMalformedEncoding, tag, err)
		}
	}
	return Restore(data, dst)
}
