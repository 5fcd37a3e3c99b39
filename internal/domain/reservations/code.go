package reservations

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/speps/go-hashids/v2"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeGenerator derives the short public confirmation code shown to guests
// from the reservation id.
type CodeGenerator struct {
	h *hashids.HashID
}

func NewCodeGenerator(salt string) (*CodeGenerator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8
	hd.Alphabet = codeAlphabet

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("init confirmation code encoder: %w", err)
	}
	return &CodeGenerator{h: h}, nil
}

func (g *CodeGenerator) Generate(id uuid.UUID) (string, error) {
	n := int64(binary.BigEndian.Uint64(id[:8]) & math.MaxInt64)
	code, err := g.h.EncodeInt64([]int64{n})
	if err != nil {
		return "", fmt.Errorf("encode confirmation code: %w", err)
	}
	return "NW-" + code, nil
}
