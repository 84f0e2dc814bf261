// Package id provides the stream entry identifier and its per-stream generator.
//
// # Format
//
// An ID is a (millisecond timestamp, sequence) pair rendered as "<ms>-<seq>".
// IDs order by timestamp first, then sequence, so IDs issued within the same
// millisecond remain strictly increasing by sequence.
//
// # Monotonicity
//
// The Generator never issues an ID lower than or equal to the previous one:
//   - If the supplied clock regresses, it pins to the last seen millisecond and
//     increments the sequence.
//   - If the sequence would overflow within a millisecond, it moves to the next
//     millisecond with sequence 0.
//
// Usage
//
//	g := id.NewGenerator()
//	newID := g.Next(id.NowMs())
//	s := newID.String()          // "1726833600000-0"
//	parsed, _ := id.Parse(s)     // round-trips
package id
