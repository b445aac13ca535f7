// Package record keeps a JSON lines log of received snapshots for later
// latency analysis.
package record

import (
	"bufio"
	"encoding/json"
	"github.com/go-faster/errors"
	"github.com/gofrs/uuid/v5"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const Ext = ".jsonl"

type Entry struct {
	Session  uuid.UUID `json:"session"`
	Seq      uint64    `json:"seq"`
	Sent     time.Time `json:"sent"`
	Received time.Time `json:"received"`
	Size     int       `json:"size"`
	From     string    `json:"from"`
}

// Latency is zero when the sender did not stamp the snapshot.
func (e Entry) Latency() time.Duration {
	if e.Sent.IsZero() {
		return 0
	}
	return e.Received.Sub(e.Sent)
}

type Recorder struct {
	mu      *sync.Mutex
	file    *os.File
	encoder *json.Encoder
	session uuid.UUID
	path    string
	seq     uint64
}

// NewRecorder creates <dir>/<session>.jsonl for a fresh random session.
func NewRecorder(dir string) (*Recorder, error) {
	var session, err = uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "uuid.NewV4")
	}

	if err = os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "os.MkdirAll")
	}

	var path = filepath.Join(dir, session.String()+Ext)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "os.OpenFile")
	}

	var recorder = new(Recorder)
	recorder.mu = new(sync.Mutex)
	recorder.file = file
	recorder.encoder = json.NewEncoder(file)
	recorder.session = session
	recorder.path = path
	return recorder, nil
}

func (r *Recorder) Session() uuid.UUID {
	return r.session
}

func (r *Recorder) Path() string {
	return r.path
}

// Record appends one line. Sequence numbers start at 1.
func (r *Recorder) Record(sent, received time.Time, size int, from string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return errors.New("recorder is closed")
	}

	r.seq++
	var entry = Entry{
		Session:  r.session,
		Seq:      r.seq,
		Sent:     sent,
		Received: received,
		Size:     size,
		From:     from,
	}
	if err := r.encoder.Encode(entry); err != nil {
		return errors.Wrap(err, "encoder.Encode")
	}
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	var err = r.file.Close()
	r.file = nil
	return err
}

// Load reads every entry of a record file.
func Load(path string) ([]Entry, error) {
	var file, err = os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.Open")
	}
	defer file.Close()

	var entries []Entry
	var scanner = bufio.NewScanner(file)
	var line int
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry Entry
		if err = json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		entries = append(entries, entry)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanner.Err")
	}
	return entries, nil
}
