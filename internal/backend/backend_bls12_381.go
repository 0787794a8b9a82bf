package backend

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	kzg_bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	"github.com/consensys/gnark-crypto/kzg"
	gnarkplonk "github.com/consensys/gnark/backend/plonk"
	plonk_bls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"
)

func init() {
	_, _, g1, _ := curve.Generators()
	register(newCurveBackend[fr.Element, *fr.Element, curve.G1Affine, *curve.G1Affine](
		ecc.BLS12_381, g1,
		func(p *curve.G1Affine) []byte {
			b := p.Bytes()
			return b[:]
		},
		hooks[fr.Element, curve.G1Affine]{
			newSRS: func(size uint64, alpha *big.Int) (kzg.SRS, error) {
				s, err := kzg_bls12381.NewSRS(size, alpha)
				if err != nil {
					return nil, err
				}
				return s, nil
			},
			srsLen: func(s kzg.SRS) int {
				return len(s.(*kzg_bls12381.SRS).Pk.G1)
			},
			truncate: func(s kzg.SRS, n int) kzg.SRS {
				src := s.(*kzg_bls12381.SRS)
				dst := &kzg_bls12381.SRS{Vk: src.Vk}
				dst.Pk.G1 = append([]curve.G1Affine(nil), src.Pk.G1[:n]...)
				return dst
			},
			lagrange: func(s kzg.SRS, n int) (kzg.SRS, error) {
				src := s.(*kzg_bls12381.SRS)
				lag, err := kzg_bls12381.ToLagrangeG1(append([]curve.G1Affine(nil), src.Pk.G1[:n]...))
				if err != nil {
					return nil, err
				}
				dst := &kzg_bls12381.SRS{Vk: src.Vk}
				dst.Pk.G1 = lag
				return dst, nil
			},
			srsPoint: func(s kzg.SRS, i int) curve.G1Affine {
				return s.(*kzg_bls12381.SRS).Pk.G1[i]
			},
			commit: func(s kzg.SRS, p []fr.Element) (curve.G1Affine, error) {
				return kzg_bls12381.Commit(p, s.(*kzg_bls12381.SRS).Pk)
			},
			proof: func(p gnarkplonk.Proof) (*proofParts[fr.Element, curve.G1Affine], bool) {
				pr, ok := p.(*plonk_bls12381.Proof)
				if !ok {
					return nil, false
				}
				return &proofParts[fr.Element, curve.G1Affine]{
					lro:             pr.LRO,
					z:               pr.Z,
					h:               pr.H,
					bsb22:           pr.Bsb22Commitments,
					batchOpening:    pr.BatchedProof.H,
					zShiftedOpening: pr.ZShiftedOpening.H,
					claimed:         pr.BatchedProof.ClaimedValues,
					zShifted:        pr.ZShiftedOpening.ClaimedValue,
				}, true
			},
			vk: func(v gnarkplonk.VerifyingKey) (*vkParts[curve.G1Affine], bool) {
				vk, ok := v.(*plonk_bls12381.VerifyingKey)
				if !ok {
					return nil, false
				}
				return &vkParts[curve.G1Affine]{
					size:     vk.Size,
					nbPublic: vk.NbPublicVariables,
					s:        vk.S,
					ql:       vk.Ql,
					qr:       vk.Qr,
					qm:       vk.Qm,
					qo:       vk.Qo,
					qk:       vk.Qk,
					qcp:      vk.Qcp,
				}, true
			},
			layout: layout{
				g1:         curve.SizeOfG1AffineCompressed,
				g1Raw:      curve.SizeOfG1AffineUncompressed,
				g2:         curve.SizeOfG2AffineCompressed,
				g2Raw:      curve.SizeOfG2AffineUncompressed,
				fr:         fr.Bytes,
				lines:      binary.Size(new(kzg_bls12381.VerifyingKey).Lines),
				compressed: threeBitFlags,
			},
		},
	))
}
