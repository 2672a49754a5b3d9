package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"log"
	"path"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/semaphore"
)

// ErrFrameInvalidated is returned by Load when the frame was invalidated
// while it was being decoded. The decoded result is discarded.
var ErrFrameInvalidated = errors.New("frame invalidated during load")

// FrameStore is responsible for preloading and caching sequence frames.
// It implements viewer.AssetLoader: Load decodes one frame into memory and
// can be called from many goroutines at once.
//
// Decoding happens on loader goroutines; the conversion to *ebiten.Image is
// deferred to GetImage, which is called from Draw on the game loop.
//
// Thread Safety Note:
// Both caches are guarded by a single RWMutex. The number of frames decoded
// concurrently is bounded by a weighted semaphore.
//
// Usage:
//
//	store := NewFrameStore(os.DirFS("assets"), 8)
//	if err := store.Load(ctx, "images/lung1/img1.jpg"); err != nil {
//	    log.Printf("Failed to load frame: %v", err)
//	}
//	img := store.GetImage("images/lung1/img1.jpg")
type FrameStore struct {
	fsys fs.FS
	sem  *semaphore.Weighted

	mu         sync.RWMutex
	decoded    map[string]image.Image   // url -> decoded frame
	imageCache map[string]*ebiten.Image // url -> GPU image, created lazily on the game loop

	// invalidated records every Invalidate prefix in call order. A Load
	// remembers the length when it starts and refuses to publish a frame
	// matched by any prefix appended after that.
	invalidated []string
}

// NewFrameStore creates a FrameStore reading frames from fsys.
//
// Parameters:
//   - fsys: file system holding the frame tree (e.g. os.DirFS(framesDir))
//   - concurrency: maximum number of frames decoded at once (<= 0 means 1)
func NewFrameStore(fsys fs.FS, concurrency int) *FrameStore {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FrameStore{
		fsys:       fsys,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		decoded:    make(map[string]image.Image),
		imageCache: make(map[string]*ebiten.Image),
	}
}

// normalizeFramePath converts a frame url into an fs.FS path.
func normalizeFramePath(url string) (string, error) {
	p := strings.TrimPrefix(url, "./")
	p = strings.TrimPrefix(p, "/")
	p = path.Clean(p)
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("invalid frame path %q", url)
	}
	return p, nil
}

// Load decodes the frame at url and caches it.
// If the frame is already cached it returns nil immediately.
//
// Error handling:
//   - Returns ctx.Err() if the context ends while waiting for a decode slot.
//   - Returns an error if the file does not exist or cannot be decoded.
//   - Failed frames are not cached, a later Load retries them.
//   - Returns ErrFrameInvalidated if Invalidate covered the frame while it
//     was being decoded.
func (s *FrameStore) Load(ctx context.Context, url string) error {
	p, err := normalizeFramePath(url)
	if err != nil {
		return err
	}

	if s.Decoded(p) != nil {
		return nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	// Another goroutine may have decoded it while we waited
	if s.Decoded(p) != nil {
		return nil
	}

	s.mu.RLock()
	mark := len(s.invalidated)
	s.mu.RUnlock()

	file, err := s.fsys.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open frame %s: %w", p, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return fmt.Errorf("failed to decode frame %s: %w", p, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, prefix := range s.invalidated[mark:] {
		if strings.HasPrefix(p, prefix) {
			return fmt.Errorf("%s: %w", p, ErrFrameInvalidated)
		}
	}
	s.decoded[p] = img
	return nil
}

// Decoded returns the decoded frame for url, or nil if it has not been loaded.
func (s *FrameStore) Decoded(url string) image.Image {
	p, err := normalizeFramePath(url)
	if err != nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decoded[p]
}

// GetImage returns the frame as an *ebiten.Image, converting it on first use.
// It returns nil if the frame has not been loaded.
// Must be called from the game loop (Update/Draw).
func (s *FrameStore) GetImage(url string) *ebiten.Image {
	p, err := normalizeFramePath(url)
	if err != nil {
		return nil
	}

	s.mu.RLock()
	cached, ok := s.imageCache[p]
	src := s.decoded[p]
	s.mu.RUnlock()
	if ok {
		return cached
	}
	if src == nil {
		return nil
	}

	img := ebiten.NewImageFromImage(src)
	s.mu.Lock()
	s.imageCache[p] = img
	s.mu.Unlock()
	return img
}

// Invalidate drops every cached frame whose path starts with prefix.
//
// Returns:
//   - The number of decoded frames removed.
func (s *FrameStore) Invalidate(prefix string) int {
	prefix = strings.TrimPrefix(strings.TrimPrefix(prefix, "./"), "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidated = append(s.invalidated, prefix)
	removed := 0
	for p := range s.decoded {
		if strings.HasPrefix(p, prefix) {
			delete(s.decoded, p)
			removed++
		}
	}
	for p, img := range s.imageCache {
		if strings.HasPrefix(p, prefix) {
			img.Deallocate()
			delete(s.imageCache, p)
		}
	}
	if removed > 0 {
		log.Printf("[FrameStore] invalidated %d frames under %q", removed, prefix)
	}
	return removed
}

// Len returns the number of decoded frames held in memory.
func (s *FrameStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decoded)
}
