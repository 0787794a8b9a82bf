package backend

import (
	"encoding/binary"
	"fmt"
)

// Shape names a gnark artifact whose binary layout Scan understands.
type Shape int

const (
	ShapeSRS Shape = iota + 1
	ShapeProvingKey
	ShapeVerifyingKey
	ShapeProof
)

func (s Shape) String() string {
	switch s {
	case ShapeSRS:
		return "srs"
	case ShapeProvingKey:
		return "proving key"
	case ShapeVerifyingKey:
		return "verifying key"
	case ShapeProof:
		return "proof"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// layout holds the encoded sizes of one curve's gnark-crypto values.
type layout struct {
	g1, g1Raw  int
	g2, g2Raw  int
	fr         int
	lines      int // precomputed pairing lines of a KZG verifying key
	compressed func(msb byte) bool
}

// twoBitFlags is the point metadata of bn254: 0b00 in the top two bits marks
// an uncompressed point.
func twoBitFlags(msb byte) bool { return msb&(0b11<<6) != 0 }

// threeBitFlags is the point metadata of the BLS and BW6 curves: 0b000 and
// 0b010 in the top three bits mark uncompressed points.
func threeBitFlags(msb byte) bool {
	m := msb & (0b111 << 5)
	return m != 0 && m != 0b010<<5
}

// scanner walks an encoding without decoding it. Every count it meets is
// checked against the bytes that remain, so a later gnark decoder never
// sizes an allocation from a length the data cannot back.
type scanner struct {
	l   *layout
	buf []byte
	off int
}

func (s *scanner) left() int { return len(s.buf) - s.off }

func (s *scanner) skip(n int, what string) error {
	if n < 0 || s.left() < n {
		return fmt.Errorf("%w: %s needs %d bytes, %d remain", ErrInvalidEncoding, what, n, s.left())
	}
	s.off += n
	return nil
}

func (s *scanner) point(g2 bool, what string) error {
	if s.left() < 1 {
		return fmt.Errorf("%w: %s truncated", ErrInvalidEncoding, what)
	}
	small, raw := s.l.g1, s.l.g1Raw
	if g2 {
		small, raw = s.l.g2, s.l.g2Raw
	}
	if s.l.compressed(s.buf[s.off]) {
		return s.skip(small, what)
	}
	return s.skip(raw, what)
}

func (s *scanner) g1(what string, n int) error {
	for i := 0; i < n; i++ {
		if err := s.point(false, what); err != nil {
			return err
		}
	}
	return nil
}

// count reads a slice length and checks that n items of at least min bytes
// each fit in what is left.
func (s *scanner) count(what string, min int) (int, error) {
	if s.left() < 4 {
		return 0, fmt.Errorf("%w: %s length truncated", ErrInvalidEncoding, what)
	}
	n := uint64(binary.BigEndian.Uint32(s.buf[s.off:]))
	s.off += 4
	if n*uint64(min) > uint64(s.left()) {
		return 0, fmt.Errorf("%w: %s declares %d items, %d bytes remain", ErrInvalidEncoding, what, n, s.left())
	}
	return int(n), nil
}

func (s *scanner) g1Slice(what string) error {
	n, err := s.count(what, s.l.g1)
	if err != nil {
		return err
	}
	return s.g1(what, n)
}

func (s *scanner) frSlice(what string) error {
	n, err := s.count(what, s.l.fr)
	if err != nil {
		return err
	}
	return s.skip(n*s.l.fr, what)
}

func (s *scanner) u64Slice(what string) error {
	n, err := s.count(what, 8)
	if err != nil {
		return err
	}
	return s.skip(n*8, what)
}

// kzgVerifyingKey follows gnark-crypto's kzg VerifyingKey: G2[0], G2[1], G1
// and the pairing lines.
func (s *scanner) kzgVerifyingKey(g1First bool) error {
	if g1First {
		if err := s.point(false, "kzg g1"); err != nil {
			return err
		}
	}
	if err := s.point(true, "kzg g2"); err != nil {
		return err
	}
	if err := s.point(true, "kzg g2"); err != nil {
		return err
	}
	if !g1First {
		if err := s.point(false, "kzg g1"); err != nil {
			return err
		}
	}
	return s.skip(s.l.lines, "kzg lines")
}

// plonkVerifyingKey follows gnark's PLONK VerifyingKey: Size, SizeInv,
// Generator, NbPublicVariables, CosetShift, S[3], Ql..Qk, Qcp, the KZG key
// and CommitmentConstraintIndexes.
func (s *scanner) plonkVerifyingKey() error {
	steps := []func() error{
		func() error { return s.skip(8+2*s.l.fr+8+s.l.fr, "verifying key header") },
		func() error { return s.g1("selector commitment", 8) },
		func() error { return s.g1Slice("qcp") },
		func() error { return s.kzgVerifyingKey(true) },
		func() error { return s.u64Slice("commitment constraint indexes") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (s *scanner) walk(shape Shape) error {
	switch shape {
	case ShapeSRS:
		if err := s.g1Slice("srs points"); err != nil {
			return err
		}
		return s.kzgVerifyingKey(false)
	case ShapeVerifyingKey:
		return s.plonkVerifyingKey()
	case ShapeProvingKey:
		if err := s.plonkVerifyingKey(); err != nil {
			return err
		}
		if err := s.g1Slice("canonical srs"); err != nil {
			return err
		}
		return s.g1Slice("lagrange srs")
	case ShapeProof:
		// LRO, Z, H[3] and the batched opening
		if err := s.g1("proof commitment", 8); err != nil {
			return err
		}
		if err := s.frSlice("claimed values"); err != nil {
			return err
		}
		if err := s.point(false, "shifted opening"); err != nil {
			return err
		}
		if err := s.skip(s.l.fr, "shifted claimed value"); err != nil {
			return err
		}
		return s.g1Slice("bsb22 commitments")
	default:
		return fmt.Errorf("%w: unknown shape %d", ErrInvalidEncoding, int(shape))
	}
}

func (l *layout) scan(shape Shape, data []byte) error {
	if l.lines < 0 {
		return fmt.Errorf("%w: no layout for pairing lines", ErrUnsupportedConfiguration)
	}
	s := &scanner{l: l, buf: data}
	if err := s.walk(shape); err != nil {
		return fmt.Errorf("backend: %s: %w", shape, err)
	}
	if s.left() != 0 {
		return fmt.Errorf("backend: %s: %w: %d trailing bytes", shape, ErrInvalidEncoding, s.left())
	}
	return nil
}
