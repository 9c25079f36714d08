// Package orderref generates the human-facing order reference: a fixed
// prefix, eight random uppercase alphanumerics and the current date, e.g.
// ORD-7K2M9QXA-20260901.
package orderref

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	prefix        = "ORD"
	randomLength  = 8
	alphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// RandomBits is the entropy of the random segment (~41.4 bits). Finite,
	// so the writer must treat a uniqueness violation as retryable.
	RandomBits = 41
)

// Generator produces order references. The zero clock defaults to
// time.Now; tests pin it.
type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorAt returns a generator with a fixed clock, for tests.
func NewGeneratorAt(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns a fresh reference. The random segment comes from
// crypto/rand; an exhausted entropy source is surfaced, never papered
// over with a weak fallback.
func (g *Generator) Next() (string, error) {
	buf := make([]byte, randomLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("orderref: read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, buf, g.now().Format("20060102")), nil
}
