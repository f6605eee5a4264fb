package transcriptcache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"captiond/internal/subtitle"
	"captiond/internal/transcriptcache"
)

func openCache(t *testing.T) *transcriptcache.Cache {
	t.Helper()
	cache, err := transcriptcache.Open(filepath.Join(t.TempDir(), "cache", "transcripts.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func sampleEntry(t *testing.T) transcriptcache.Entry {
	t.Helper()
	track := subtitle.NewTrack("en")
	segment, err := subtitle.NewSegment(0.5, 2.0, "cached line")
	if err != nil {
		t.Fatalf("NewSegment failed: %v", err)
	}
	segment, err = segment.WithConfidence(0.75)
	if err != nil {
		t.Fatalf("WithConfidence failed: %v", err)
	}
	track.Append(segment)
	return transcriptcache.Entry{Language: "en", Track: track}
}

func TestPutGetRoundTrip(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	if err := cache.Put(ctx, "digest-a", "fp-1", sampleEntry(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok, err := cache.Get(ctx, "digest-a", "fp-1")
	if err != nil || !ok {
		t.Fatalf("Get = %v, ok=%v", err, ok)
	}
	if entry.Language != "en" || len(entry.Track.Segments) != 1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	segment := entry.Track.Segments[0]
	if segment.Text != "cached line" || segment.Start != 0.5 || segment.End != 2.0 {
		t.Fatalf("segment mangled: %+v", segment)
	}
	if segment.Confidence == nil || *segment.Confidence != 0.75 {
		t.Fatalf("confidence lost: %v", segment.Confidence)
	}
	if segment.Index != 1 {
		t.Fatalf("index not reassigned: %d", segment.Index)
	}
}

func TestGetMissAndKeyIsolation(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "digest-a", "fp-1"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Put(ctx, "digest-a", "fp-1", sampleEntry(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	// Same audio, different engine parameters: still a miss.
	if _, ok, _ := cache.Get(ctx, "digest-a", "fp-2"); ok {
		t.Fatal("fingerprint not part of the key")
	}
	if _, ok, _ := cache.Get(ctx, "digest-b", "fp-1"); ok {
		t.Fatal("digest not part of the key")
	}
}

func TestPutReplacesExisting(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	if err := cache.Put(ctx, "d", "f", sampleEntry(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	replacement := sampleEntry(t)
	replacement.Language = "de"
	if err := cache.Put(ctx, "d", "f", replacement); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	entry, ok, err := cache.Get(ctx, "d", "f")
	if err != nil || !ok {
		t.Fatalf("Get = %v, ok=%v", err, ok)
	}
	if entry.Language != "de" {
		t.Fatalf("entry not replaced: %+v", entry)
	}
	count, err := cache.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("count = %d, err=%v", count, err)
	}
}

func TestAudioDigestStableAndContentSensitive(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.wav")
	pathB := filepath.Join(dir, "b.wav")
	if err := os.WriteFile(pathA, []byte("same bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(pathB, []byte("same bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	digestA, err := transcriptcache.AudioDigest(pathA)
	if err != nil {
		t.Fatalf("AudioDigest failed: %v", err)
	}
	digestB, _ := transcriptcache.AudioDigest(pathB)
	if digestA != digestB {
		t.Fatal("identical content produced different digests")
	}

	if err := os.WriteFile(pathB, []byte("other bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	digestB, _ = transcriptcache.AudioDigest(pathB)
	if digestA == digestB {
		t.Fatal("different content shares a digest")
	}
}
