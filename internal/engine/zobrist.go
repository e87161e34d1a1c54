package engine

import (
	"github.com/corentings/chess/v2"

	"github.com/regentchess/regent/internal/board"
)

// Zobrist keys for position fingerprinting.
// Generated from a fixed seed so fingerprints are reproducible across runs.
var (
	zobristPiece     [2][6][64]uint64 // [color][piece type][square]
	zobristCastling  [2][2]uint64     // [color][king side, queen side]
	zobristEnPassant [64]uint64       // indexed by the en passant target square
	zobristBlackTurn uint64
)

// prng is the xorshift64* generator used for key material and, separately
// seeded, for transposition table eviction.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func init() {
	rng := newPRNG(0x9E3779B97F4A7C15)

	for c := 0; c < 2; c++ {
		for pt := 0; pt < 6; pt++ {
			for sq := 0; sq < 64; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for c := 0; c < 2; c++ {
		for side := 0; side < 2; side++ {
			zobristCastling[c][side] = rng.next()
		}
	}
	for sq := 0; sq < 64; sq++ {
		zobristEnPassant[sq] = rng.next()
	}
	zobristBlackTurn = rng.next()
}

// Fingerprint returns the 64-bit hash of a position: the XOR of one word per
// occupied square, the side-to-move word when black is on turn, one word per
// held castling right, and the en passant word when a target square exists.
// The half-move clock is deliberately not hashed.
func Fingerprint(pos *chess.Position) uint64 {
	var h uint64
	b := pos.Board()
	for sq := chess.Square(0); sq < 64; sq++ {
		p := b.Piece(sq)
		if p == chess.NoPiece {
			continue
		}
		h ^= zobristPiece[board.ColorIndex(p.Color())][board.TypeIndex(p.Type())][sq]
	}
	if pos.Turn() == chess.Black {
		h ^= zobristBlackTurn
	}
	cr := pos.CastleRights()
	for ci, c := range []chess.Color{chess.White, chess.Black} {
		if cr.CanCastle(c, chess.KingSide) {
			h ^= zobristCastling[ci][0]
		}
		if cr.CanCastle(c, chess.QueenSide) {
			h ^= zobristCastling[ci][1]
		}
	}
	if ep := pos.EnPassantSquare(); ep != chess.NoSquare {
		h ^= zobristEnPassant[ep]
	}
	return h
}
