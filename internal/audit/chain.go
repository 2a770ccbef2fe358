package audit

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ChainSink appends records to a JSON-lines file where every line carries the
// hash of the previous one, so edits and deletions are detectable.
type ChainSink struct {
	mu   sync.Mutex
	f    *os.File
	prev []byte
}

type chainLine struct {
	Record
	Prev string `json:"prev"`
	Hash string `json:"hash"`
}

// NewChainSink opens path for appending and resumes the chain from its last
// line.
func NewChainSink(path string) (*ChainSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	prev, err := lastHash(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &ChainSink{f: f, prev: prev}, nil
}

func (s *ChainSink) Emit(_ context.Context, rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	rec.Time = rec.Time.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	line := chainLine{Record: rec, Prev: hex.EncodeToString(s.prev)}
	sum, err := chainHash(s.prev, line)
	if err != nil {
		return err
	}
	line.Hash = hex.EncodeToString(sum)
	b, err := json.Marshal(line)
	if err != nil {
		return err
	}
	if _, err := s.f.Write(append(b, '\n')); err != nil {
		return err
	}
	s.prev = sum
	return nil
}

func (s *ChainSink) Close() error { return s.f.Close() }

// hash covers the previous hash and the line without its own hash
func chainHash(prev []byte, line chainLine) ([]byte, error) {
	line.Hash = ""
	b, err := json.Marshal(line)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(append(append([]byte{}, prev...), b...))
	return h[:], nil
}

// VerifyChain re-computes every hash in the file at path and returns the
// number of valid lines, or an error naming the first broken line.
func VerifyChain(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	prev := make([]byte, sha256.Size)
	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		n++
		var line chainLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return n - 1, fmt.Errorf("line %d: %w", n, err)
		}
		if line.Prev != hex.EncodeToString(prev) {
			return n - 1, fmt.Errorf("line %d: prev hash mismatch", n)
		}
		sum, err := chainHash(prev, line)
		if err != nil {
			return n - 1, fmt.Errorf("line %d: %w", n, err)
		}
		if line.Hash != hex.EncodeToString(sum) {
			return n - 1, fmt.Errorf("line %d: hash mismatch", n)
		}
		prev = sum
	}
	if err := sc.Err(); err != nil {
		return n, err
	}
	return n, nil
}

func lastHash(path string) ([]byte, error) {
	prev := make([]byte, sha256.Size)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return prev, nil
	}
	if err != nil {
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	last := lines[len(lines)-1]
	if len(last) == 0 {
		return prev, nil
	}
	var line chainLine
	if err := json.Unmarshal(last, &line); err != nil {
		return nil, fmt.Errorf("resume audit chain %s: %w", path, err)
	}
	h, err := hex.DecodeString(line.Hash)
	if err != nil || len(h) != sha256.Size {
		return nil, fmt.Errorf("resume audit chain %s: bad hash", path)
	}
	return h, nil
}
