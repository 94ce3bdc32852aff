package tetris

import (
	"math/rand/v2"
	"slices"
)

// Randomizer picks the shape of the next piece.
type Randomizer interface {
	Next() Shape
}

// Uniform picks every shape independently with equal probability.
type Uniform struct {
	rand *rand.Rand
}

// NewUniform returns a uniform randomizer. A nil source seeds one at random.
func NewUniform(src rand.Source) *Uniform {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Uniform{rand: rand.New(src)}
}

func (u *Uniform) Next() Shape {
	return Shapes[u.rand.IntN(len(Shapes))]
}

// Bag deals the seven shapes in shuffled rounds, so every shape shows up once per
// seven draws. Based on https://tetris.wiki/Random_Generator
type Bag struct {
	rand  *rand.Rand
	bag   []Shape
	first bool
}

func NewBag(src rand.Source) *Bag {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Bag{rand: rand.New(src), first: true}
}

func (b *Bag) Next() Shape {
	if len(b.bag) == 0 {
		b.fill()
	}
	s := b.bag[0]
	b.bag = b.bag[1:]
	return s
}

func (b *Bag) fill() {
	b.bag = slices.Clone(Shapes)
	b.rand.Shuffle(len(b.bag), func(i, j int) { b.bag[i], b.bag[j] = b.bag[j], b.bag[i] })
	if !b.first {
		return
	}
	b.first = false
	// the first piece of a game is never S, Z or O.
	for i, s := range b.bag {
		if s != S && s != Z && s != O {
			b.bag[0], b.bag[i] = b.bag[i], b.bag[0]
			return
		}
	}
}
