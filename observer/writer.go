package observer

import (
	"github.com/go-faster/errors"
	"io"
	"time"
)

type Writer struct {
	dst   io.WriteCloser
	meter *Meter
}

func NewWriter(dst io.WriteCloser, rep Reporter, interval time.Duration) (*Writer, error) {
	if dst == nil {
		return nil, errors.New("dst is nil")
	}

	var meter, err = NewMeter(rep, interval)
	if err != nil {
		return nil, errors.Wrap(err, "NewMeter")
	}

	var writer = new(Writer)
	writer.dst = dst
	writer.meter = meter
	return writer, nil
}

func (w *Writer) Write(p []byte) (n int, err error) {
	n, err = w.dst.Write(p)
	if n > 0 {
		w.meter.Add(n)
	}
	return n, err
}

func (w *Writer) Meter() *Meter {
	return w.meter
}

func (w *Writer) Close() error {
	w.meter.Stop()
	return w.dst.Close()
}
