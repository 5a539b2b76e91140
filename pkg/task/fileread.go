package task

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ChunkSize is the number of bytes FileRead reads per Resume.
const ChunkSize = 4096

type fileReadState int

const (
	fileUnopened fileReadState = iota
	fileReading
	fileDone
)

// FileReadProgress is a coherent snapshot of a FileRead.
type FileReadProgress struct {
	Done bool
	Read int64
	Size int64
}

// FileRead reads a whole file into memory, one chunk per Resume.
type FileRead struct {
	path string

	// file is only touched by the resuming worker.
	file *os.File

	mu    sync.Mutex
	state fileReadState
	buf   []byte
	read  int64
	size  int64
	err   error
	taken bool
}

// NewFileRead returns a task reading the file at path.
// Nothing is opened until the first Resume.
func NewFileRead(path string) *FileRead {
	return &FileRead{path: path}
}

// Path returns the path of the file being read.
func (f *FileRead) Path() string {
	return f.path
}

// Resume opens the file on the first call and then reads the next chunk.
// The first call also reads the first chunk, so a file of n bytes completes after
// ceil(n/ChunkSize) calls.
func (f *FileRead) Resume() {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()

	switch state {
	case fileDone:
		return
	case fileUnopened:
		if !f.open() {
			return
		}
	}

	f.readChunk()
}

func (f *FileRead) open() bool {
	file, err := os.Open(f.path)
	if err != nil {
		f.finish(fmt.Errorf("failed to open %s: %w", f.path, err))
		return false
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		f.finish(fmt.Errorf("failed to stat %s: %w", f.path, err))
		return false
	}

	f.file = file

	f.mu.Lock()
	f.size = info.Size()
	f.buf = make([]byte, info.Size())
	f.state = fileReading
	f.mu.Unlock()

	return true
}

func (f *FileRead) readChunk() {
	f.mu.Lock()
	start, size := f.read, f.size
	f.mu.Unlock()

	if start >= size {
		f.finish(nil)
		return
	}

	end := min(start+ChunkSize, size)
	n, err := io.ReadFull(f.file, f.buf[start:end])

	f.mu.Lock()
	f.read += int64(n)
	read := f.read
	f.mu.Unlock()

	switch {
	case err != nil:
		f.finish(fmt.Errorf("failed to read %s at offset %d: %w", f.path, start, err))
	case read == size:
		f.finish(nil)
	}
}

// finish records the terminal state and releases the file.
func (f *FileRead) finish(err error) {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	f.state = fileDone
	if err != nil {
		f.buf = nil
	}
}

func (f *FileRead) Progress() FileReadProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FileReadProgress{
		Done: f.state == fileDone,
		Read: f.read,
		Size: f.size,
	}
}

func (f *FileRead) IsComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == fileDone
}

// Result moves the buffer out of the task, or returns the recorded error.
func (f *FileRead) Result() Result[[]byte] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != fileDone {
		panic(fmt.Sprintf("task: FileRead.Result called before completion of %s", f.path))
	}
	if f.taken {
		panic(fmt.Sprintf("task: FileRead.Result called twice for %s", f.path))
	}
	f.taken = true

	if f.err != nil {
		return Result[[]byte]{Err: f.err}
	}

	data := f.buf
	f.buf = nil
	return Result[[]byte]{Data: data}
}
