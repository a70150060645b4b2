package orders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Log records orders to a file and plays them back
type Log struct {
	Orders []Order
	file   *os.File
	writer *bufio.Writer
}

// NewRecorder creates a log file for recording
func NewRecorder(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Log{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Record appends an order to the log and the file
func (l *Log) Record(o Order) error {
	l.Orders = append(l.Orders, o)
	if l.writer == nil {
		return nil
	}
	return o.Encode(l.writer)
}

// Close flushes and closes the log file
func (l *Log) Close() error {
	if l.writer != nil {
		if err := l.writer.Flush(); err != nil {
			l.file.Close()
			return err
		}
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Load reads a log file. A truncated final order is an error.
func Load(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	l := &Log{}
	reader := bufio.NewReader(f)
	for {
		var o Order
		err := o.Decode(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read order %d: %w", len(l.Orders), err)
		}
		l.Orders = append(l.Orders, o)
	}
	sort.SliceStable(l.Orders, func(i, j int) bool { return l.Orders[i].Tick < l.Orders[j].Tick })
	return l, nil
}

// ForTick returns the orders issued at tick, in recording order
func (l *Log) ForTick(tick uint64) []Order {
	var result []Order
	for _, o := range l.Orders {
		if o.Tick == tick {
			result = append(result, o)
		}
	}
	return result
}

// LastTick is the tick of the final order, or 0 for an empty log
func (l *Log) LastTick() uint64 {
	if len(l.Orders) == 0 {
		return 0
	}
	return l.Orders[len(l.Orders)-1].Tick
}
