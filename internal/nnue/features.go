package nnue

import "github.com/hailam/chessplay/internal/board"

// Feature-index strides. Each perspective sees 768 = 2 (color) x 6 (role) x
// 64 (square) boolean features. The white perspective sees every square
// mirrored vertically and the black perspective sees it unmirrored, with the
// color blocks swapped, so that, e.g., white's king-side rook seen by white
// and black's king-side rook seen by black activate the same feature.
const (
	colorStride = 384
	pieceStride = 64
)

// role maps a board.PieceType (0-indexed, Pawn=0) to the 1-indexed role
// value the feature formula uses (Pawn=1 .. King=6).
func role(pt board.PieceType) int {
	return int(pt) + 1
}

// FeatureIndex returns the white-perspective and black-perspective feature
// indices for a piece of the given color sitting on sq.
func FeatureIndex(c board.Color, pt board.PieceType, sq board.Square) (whiteIdx, blackIdx int) {
	p := role(pt) - 1
	col := int(c)

	whiteIdx = col*colorStride + p*pieceStride + int(sq.Mirror())
	blackIdx = (1-col)*colorStride + p*pieceStride + int(sq)
	return whiteIdx, blackIdx
}

// ManualUpdate adds (add=true) or removes (add=false) the feature for a
// piece at sq from both perspectives of the current top-of-stack
// accumulator couple.
func ManualUpdate(stack *AccumulatorStack, net *Network, piece board.Piece, sq board.Square, add bool) {
	whiteIdx, blackIdx := FeatureIndex(piece.Color(), piece.Type(), sq)
	couple := stack.Current()
	if add {
		couple.White.AddFeature(whiteIdx, net)
		couple.Black.AddFeature(blackIdx, net)
	} else {
		couple.White.RemoveFeature(whiteIdx, net)
		couple.Black.RemoveFeature(blackIdx, net)
	}
}

// MoveUpdate moves a piece's feature from one square to another across both
// perspectives of the current top-of-stack accumulator couple.
func MoveUpdate(stack *AccumulatorStack, net *Network, piece board.Piece, from, to board.Square) {
	fromWhite, fromBlack := FeatureIndex(piece.Color(), piece.Type(), from)
	toWhite, toBlack := FeatureIndex(piece.Color(), piece.Type(), to)

	couple := stack.Current()
	couple.White.RemoveFeature(fromWhite, net)
	couple.Black.RemoveFeature(fromBlack, net)
	couple.White.AddFeature(toWhite, net)
	couple.Black.AddFeature(toBlack, net)
}

// ComputeFromScratch rebuilds the current top-of-stack accumulator couple
// from the bias vector by iterating every occupied square of pos. Used for
// the initial position and whenever an incremental update is not possible.
func ComputeFromScratch(stack *AccumulatorStack, net *Network, pos *board.Position) {
	couple := stack.Current()
	couple.White = net.FeatureBias
	couple.Black = net.FeatureBias

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				whiteIdx, blackIdx := FeatureIndex(c, pt, sq)
				couple.White.AddFeature(whiteIdx, net)
				couple.Black.AddFeature(blackIdx, net)
			}
		}
	}
}
