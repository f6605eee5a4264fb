package transcriptcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"captiond/internal/subtitle"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
    audio_digest TEXT NOT NULL,
    fingerprint  TEXT NOT NULL,
    language     TEXT NOT NULL,
    track_json   TEXT NOT NULL,
    created_at   TEXT NOT NULL,
    PRIMARY KEY (audio_digest, fingerprint)
);
`

// Entry is a cached engine result.
type Entry struct {
	Language string
	Track    *subtitle.Track
}

// Cache is a SQLite-backed transcript store.
type Cache struct {
	db   *sql.DB
	path string
}

// Open creates or opens the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// AudioDigest hashes the audio file content for use as a cache key.
func AudioDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio for digest: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("digest audio: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Get returns the cached entry for a digest/fingerprint pair, or ok=false on
// a miss.
func (c *Cache) Get(ctx context.Context, audioDigest, fingerprint string) (Entry, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT language, track_json FROM transcripts WHERE audio_digest = ? AND fingerprint = ?`,
		audioDigest, fingerprint)

	var entry Entry
	var trackJSON string
	if err := row.Scan(&entry.Language, &trackJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("query transcript: %w", err)
	}

	track, err := decodeTrack(trackJSON)
	if err != nil {
		return Entry{}, false, err
	}
	entry.Track = track
	return entry, true, nil
}

// Put stores an engine result, replacing any previous entry for the same
// key.
func (c *Cache) Put(ctx context.Context, audioDigest, fingerprint string, entry Entry) error {
	trackJSON, err := encodeTrack(entry.Track)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO transcripts (audio_digest, fingerprint, language, track_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		audioDigest, fingerprint, entry.Language, trackJSON, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

// Count returns the number of cached transcripts.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transcripts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}
	return count, nil
}

type storedSegment struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type storedTrack struct {
	Language string          `json:"language"`
	Segments []storedSegment `json:"segments"`
}

func encodeTrack(track *subtitle.Track) (string, error) {
	if track == nil {
		return "", errors.New("encode transcript: nil track")
	}
	stored := storedTrack{Language: track.Language, Segments: make([]storedSegment, 0, len(track.Segments))}
	for _, segment := range track.Segments {
		stored.Segments = append(stored.Segments, storedSegment{
			Start:      segment.Start,
			End:        segment.End,
			Text:       segment.Text,
			Confidence: segment.Confidence,
		})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	return string(data), nil
}

func decodeTrack(trackJSON string) (*subtitle.Track, error) {
	var stored storedTrack
	if err := json.Unmarshal([]byte(trackJSON), &stored); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	track := subtitle.NewTrack(stored.Language)
	for _, raw := range stored.Segments {
		segment, err := subtitle.NewSegment(raw.Start, raw.End, raw.Text)
		if err != nil {
			return nil, fmt.Errorf("decode transcript segment: %w", err)
		}
		if raw.Confidence != nil {
			if withConf, err := segment.WithConfidence(*raw.Confidence); err == nil {
				segment = withConf
			}
		}
		track.Append(segment)
	}
	return track, nil
}
