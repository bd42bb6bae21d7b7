package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// MoveRecord is one emitted candidate move, serialized as a JSON line
// in trace.jsonl. Together the records are the full, replayable history
// of an enumeration run.
type MoveRecord struct {
	// Macro is the strategy cursor of the macro iteration the move
	// belongs to.
	Macro int `json:"macro"`

	// Index is the move's position inside its macro iteration.
	Index int `json:"index"`

	// Operation is "merge" or "split".
	Operation string `json:"operation"`

	// Target is the candidate node handle; 0 means no specific target.
	Target int32 `json:"target"`

	// TargetName is the resolved node name, when known.
	TargetName string `json:"targetName,omitempty"`

	// Overlap is the overlap value of the producing template.
	Overlap float64 `json:"overlap"`

	// Bits, Branches and Depth are the split point values; zero for
	// merge moves.
	Bits     int `json:"bits"`
	Branches int `json:"branches"`
	Depth    int `json:"depth"`
}

// TraceWriter appends move records to <baseDir>/runs/<runID>/trace.jsonl.
// Output is buffered; call Flush or Close to make it durable. Safe for
// concurrent use.
type TraceWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewTraceWriter opens the trace file for a run. With appendMode set,
// records are added after any existing ones; otherwise the file is
// truncated.
func NewTraceWriter(baseDir, runID string, appendMode bool) (*TraceWriter, error) {
	dir := filepath.Join(baseDir, "runs", runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}

	path := filepath.Join(dir, "trace.jsonl")
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	return &TraceWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Write appends one record.
func (tw *TraceWriter) Write(record MoveRecord) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal move record: %w", err)
	}
	if _, err := tw.writer.Write(data); err != nil {
		return fmt.Errorf("write move record: %w", err)
	}
	if err := tw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

// Flush pushes buffered records to disk.
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("flush trace writer: %w", err)
	}
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("sync trace file: %w", err)
	}
	return nil
}

// Close flushes and closes the trace file.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		tw.file.Close()
		return fmt.Errorf("flush on close: %w", err)
	}
	if err := tw.file.Close(); err != nil {
		return fmt.Errorf("close trace file: %w", err)
	}
	return nil
}

// Path returns the trace file location.
func (tw *TraceWriter) Path() string {
	return tw.path
}

// TraceReader reads move records back from a run's trace file.
type TraceReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewTraceReader opens the trace file of a run for reading.
func NewTraceReader(baseDir, runID string) (*TraceReader, error) {
	path := filepath.Join(baseDir, "runs", runID, "trace.jsonl")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &TraceReader{file: file, scanner: scanner}, nil
}

// Read returns the next record, or io.EOF after the last one.
func (tr *TraceReader) Read() (*MoveRecord, error) {
	if !tr.scanner.Scan() {
		if err := tr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan trace line: %w", err)
		}
		return nil, io.EOF
	}

	var record MoveRecord
	if err := json.Unmarshal(tr.scanner.Bytes(), &record); err != nil {
		return nil, fmt.Errorf("unmarshal move record: %w", err)
	}
	return &record, nil
}

// ReadAll drains the remaining records.
func (tr *TraceReader) ReadAll() ([]MoveRecord, error) {
	var records []MoveRecord
	for {
		record, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// Close closes the underlying file.
func (tr *TraceReader) Close() error {
	if err := tr.file.Close(); err != nil {
		return fmt.Errorf("close trace file: %w", err)
	}
	return nil
}
