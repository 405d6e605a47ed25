package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
)

// maxTopicLen bounds the sanitized topic prefix embedded in filenames.
const maxTopicLen = 30

// docTimestampLayout is the timestamp written into session documents.
const docTimestampLayout = "20060102_150405"

// FileStore is a Store backed by a directory of JSON session files, one
// per topic and calendar day: "topic_<YYYYMMDD>_<sanitized-topic>.json".
// Repeated saves for the same topic on the same day overwrite the same
// file; a new day or topic produces a new file. Each save writes the
// complete session document via a temp file and rename, so a concurrent
// reader only ever sees fully committed state.
type FileStore struct {
	dir string
	now func() time.Time // swappable in tests
	log zerolog.Logger
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StoreError{Op: "save", Path: dir, Err: err}
	}
	return &FileStore{dir: dir, now: time.Now, log: log}, nil
}

// Save serializes the full session to its topic+day file.
func (s *FileStore) Save(topic string, messages []session.Message, status session.Status) error {
	now := s.now()
	doc := Session{
		Timestamp:      now.Format(docTimestampLayout),
		Topic:          topic,
		Messages:       messages,
		EvolutionStage: session.EvolutionStage(len(messages)),
		Status:         status,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StoreError{Op: "save", Path: topic, Err: err}
	}

	path := filepath.Join(s.dir, s.filename(topic, now))
	tmp, err := os.CreateTemp(s.dir, ".session-*.tmp")
	if err != nil {
		return &StoreError{Op: "save", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StoreError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// LoadCurrent picks the most recently modified session file. A completed
// latest session reads as "no current session", forcing a fresh topic.
// A malformed latest file is logged and also treated as no session.
func (s *FileStore) LoadCurrent() (*Session, error) {
	files, err := s.sessionFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	latest := ""
	var latestMod time.Time
	for _, name := range files {
		info, err := os.Stat(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = name
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return nil, nil
	}

	path := filepath.Join(s.dir, latest)
	doc, err := s.readSession(path)
	if err != nil {
		s.log.Warn().Err(err).Str("file", latest).Msg("latest session unreadable, starting fresh")
		return nil, nil
	}
	if doc.Status == session.StatusCompleted {
		return nil, nil
	}
	return doc, nil
}

// List returns a summary per session file, ordered by filename
// descending. Filenames are date-prefixed at day granularity, so this is
// most-recent-first up to same-day ties. Malformed files are skipped with
// a warning rather than aborting the scan.
func (s *FileStore) List() ([]Summary, error) {
	files, err := s.sessionFiles()
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	summaries := make([]Summary, 0, len(files))
	for _, name := range files {
		path := filepath.Join(s.dir, name)
		doc, err := s.readSession(path)
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping malformed session file")
			continue
		}
		status := doc.Status
		if status == "" {
			status = session.StatusCompleted
		}
		summaries = append(summaries, Summary{
			Date:         displayDate(doc.Timestamp),
			Topic:        doc.Topic,
			Status:       status,
			MessageCount: len(doc.Messages),
		})
	}
	return summaries, nil
}

// sessionFiles returns the bare names of all topic_*.json files in dir.
func (s *FileStore) sessionFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &StoreError{Op: "list", Path: s.dir, Err: err}
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, "topic_") && strings.HasSuffix(name, ".json") {
			files = append(files, name)
		}
	}
	return files, nil
}

func (s *FileStore) readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StoreError{Op: "load", Path: path, Err: err}
	}
	var doc Session
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &StoreError{Op: "load", Path: path, Err: err}
	}
	return &doc, nil
}

func (s *FileStore) filename(topic string, now time.Time) string {
	return fmt.Sprintf("topic_%s_%s.json", now.Format("20060102"), SanitizeTopic(topic))
}

// SanitizeTopic makes a topic safe for filenames: only letters, digits,
// and spaces are kept, spaces become underscores, and the result is cut
// to 30 characters.
func SanitizeTopic(topic string) string {
	var sb strings.Builder
	for _, r := range topic {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteByte('_')
		}
	}
	safe := []rune(sb.String())
	if len(safe) > maxTopicLen {
		safe = safe[:maxTopicLen]
	}
	return string(safe)
}

// displayDate converts a document timestamp to the history display
// format, falling back to the raw value when it doesn't parse.
func displayDate(ts string) string {
	t, err := time.Parse(docTimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04")
}
