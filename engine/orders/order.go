// Package orders records the commands issued to agents so a session can be
// replayed tick for tick.
package orders

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/1siamBot/rrt-engine/engine/geom"
)

// Kind identifies an order
type Kind uint8

const (
	KindMove Kind = iota
	KindStop
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindStop:
		return "stop"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Order is one command given to an agent. Agent is the agent's index in
// spawn order, which is stable across runs of the same scene.
type Order struct {
	Tick  uint64
	Agent uint32
	Kind  Kind
	Goal  geom.Vec2 // move only
}

// Encode writes an order as little-endian binary
func (o *Order) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, o.Tick); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, o.Agent); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, o.Kind); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, o.Goal.X); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, o.Goal.Y)
}

// Decode reads an order written by Encode. It returns io.EOF only when the
// stream ends cleanly between orders.
func (o *Order) Decode(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, &o.Tick); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &o.Agent); err != nil {
		return unexpected(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &o.Kind); err != nil {
		return unexpected(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &o.Goal.X); err != nil {
		return unexpected(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &o.Goal.Y); err != nil {
		return unexpected(err)
	}
	return nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
