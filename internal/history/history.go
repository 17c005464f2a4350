// Package history persists submission verdicts in LevelDB so the REPL can
// show what was submitted across sessions.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/haricheung/signals/internal/types"
)

// LevelDB key scheme; "|" separates parts so session IDs never collide.
//
//	v|<session>|<seq>   → VerdictRecord JSON
const prefixVerdict = "v|"

// Store is the LevelDB-backed verdict history.
type Store struct {
	db *leveldb.DB

	mu   sync.Mutex
	seqs map[string]int // last seq per session
}

// New opens (or creates) a LevelDB database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", dbPath, err)
	}
	return &Store{db: db, seqs: make(map[string]int)}, nil
}

// Put assigns the record an ID, timestamp and per-session sequence number
// where missing, then writes it.
//
// Expectations:
//   - Seq starts at 1 for each session and increases by one per record
//   - Sequence continues from what is already on disk after a reopen
//   - Returns the stored record
func (s *Store) Put(rec types.VerdictRecord) (types.VerdictRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if rec.Seq == 0 {
		last, err := s.lastSeq(rec.SessionID)
		if err != nil {
			return rec, err
		}
		rec.Seq = last + 1
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("history: marshal record: %w", err)
	}
	if err := s.db.Put([]byte(verdictKey(rec.SessionID, rec.Seq)), data, nil); err != nil {
		return rec, fmt.Errorf("history: put record: %w", err)
	}
	if rec.Seq > s.seqs[rec.SessionID] {
		s.seqs[rec.SessionID] = rec.Seq
	}
	return rec, nil
}

// lastSeq returns the highest seq stored for session; callers hold s.mu.
func (s *Store) lastSeq(session string) (int, error) {
	if n, ok := s.seqs[session]; ok {
		return n, nil
	}
	recs, err := s.Session(session)
	if err != nil {
		return 0, err
	}
	n := 0
	if len(recs) > 0 {
		n = recs[len(recs)-1].Seq
	}
	s.seqs[session] = n
	return n, nil
}

// Session returns every record of one session in seq order.
func (s *Store) Session(session string) ([]types.VerdictRecord, error) {
	recs, err := s.scan(sessionPrefix(session))
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })
	return recs, nil
}

// Recent returns up to n records across all sessions, newest first.
//
// Expectations:
//   - n <= 0 returns an empty slice
//   - Records are ordered by timestamp, newest first
func (s *Store) Recent(n int) ([]types.VerdictRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	recs, err := s.scan(prefixVerdict)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		ti, _ := time.Parse(time.RFC3339Nano, recs[i].Timestamp)
		tj, _ := time.Parse(time.RFC3339Nano, recs[j].Timestamp)
		if ti.Equal(tj) {
			return recs[i].Seq > recs[j].Seq
		}
		return ti.After(tj)
	})
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs, nil
}

func (s *Store) scan(prefix string) ([]types.VerdictRecord, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	var out []types.VerdictRecord
	for iter.Next() {
		var rec types.VerdictRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			slog.Warn("[HISTORY] skipping undecodable record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, iter.Error()
}

// Run persists every MsgVerdict arriving on ch until ctx is cancelled or ch
// closes.
func (s *Store) Run(ctx context.Context, ch <-chan types.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			v, ok := msg.Payload.(types.Verdict)
			if !ok {
				slog.Warn("[HISTORY] unexpected payload", "type", msg.Type)
				continue
			}
			rec, err := s.Put(types.VerdictRecord{SessionID: msg.SessionID, Verdict: v})
			if err != nil {
				slog.Error("[HISTORY] persist verdict failed", "session", msg.SessionID, "error", err)
				continue
			}
			slog.Debug("[HISTORY] persisted verdict", "session", rec.SessionID, "seq", rec.Seq, "outcome", v.Outcome)
		}
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func sessionPrefix(session string) string {
	return prefixVerdict + safeKeyPart(session) + "|"
}

// verdictKey zero-pads seq so keys sort numerically within a session.
func verdictKey(session string, seq int) string {
	return fmt.Sprintf("%s%08d", sessionPrefix(session), seq)
}

// safeKeyPart replaces "|" with "_" so LevelDB keys parse unambiguously.
func safeKeyPart(s string) string {
	return strings.ReplaceAll(s, "|", "_")
}
