// Package publish persists digests and reads them back for the API.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/bryan-buckman/newsdigest/internal/storage"
)

const (
	// LatestKey is overwritten by every successful run.
	LatestKey   = "news_summary_latest.json"
	ContentType = "application/json"

	// DefaultLocalPath is the artifact written when no store is configured.
	DefaultLocalPath = "news_summary.json"

	dateLayout = "2006-01-02"
)

var (
	// ErrNotFound is returned when the requested digest does not exist.
	ErrNotFound = errors.New("digest not found")
	// ErrInvalidDate is returned by ForDate for a date not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
)

// DatedKey is the history key for the calendar day of t (UTC).
func DatedKey(t time.Time) string {
	return "news_summary_" + t.UTC().Format(dateLayout) + ".json"
}

// Publisher writes a digest under a dated key and the latest key, or to a
// single local file when no store is configured.
type Publisher struct {
	store     storage.BlobStore
	localPath string
	now       func() time.Time
}

// New creates a publisher. A nil store selects local-file mode.
func New(store storage.BlobStore, localPath string) *Publisher {
	if localPath == "" {
		localPath = DefaultLocalPath
	}
	return &Publisher{store: store, localPath: localPath, now: time.Now}
}

// SetClock overrides the time source used for dated keys.
func (p *Publisher) SetClock(now func() time.Time) {
	p.now = now
}

// Target describes where digests go, for logs.
func (p *Publisher) Target() string {
	if p.store == nil {
		return "file:" + p.localPath
	}
	return p.store.Backend()
}

func encode(digest model.Digest) ([]byte, error) {
	if digest == nil {
		digest = model.Digest{}
	}
	data, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode digest: %w", err)
	}
	return data, nil
}

// Publish writes the digest. In store mode the dated write is best effort:
// its failure is logged and the latest write still happens. The latest key
// is authoritative, so only its failure is returned.
func (p *Publisher) Publish(ctx context.Context, digest model.Digest) error {
	data, err := encode(digest)
	if err != nil {
		return err
	}

	if p.store == nil {
		if err := writeFileAtomic(p.localPath, data); err != nil {
			slog.Error("writing local digest failed", "path", p.localPath, "error", err)
			return fmt.Errorf("write %s: %w", p.localPath, err)
		}
		slog.Info("digest saved locally", "path", p.localPath, "items", len(digest))
		return nil
	}

	dated := DatedKey(p.now())
	if err := p.store.Put(ctx, dated, ContentType, data); err != nil {
		slog.Error("uploading dated digest failed", "backend", p.store.Backend(), "key", dated, "error", err)
	} else {
		slog.Info("uploaded digest", "backend", p.store.Backend(), "key", dated)
	}

	if err := p.store.Put(ctx, LatestKey, ContentType, data); err != nil {
		slog.Error("uploading latest digest failed", "backend", p.store.Backend(), "key", LatestKey, "error", err)
		return fmt.Errorf("put %s: %w", LatestKey, err)
	}
	slog.Info("uploaded digest", "backend", p.store.Backend(), "key", LatestKey)
	return nil
}

// Latest returns the most recently published digest, or an empty digest
// when nothing has been published yet.
func (p *Publisher) Latest(ctx context.Context) (model.Digest, error) {
	var (
		data []byte
		err  error
	)
	if p.store == nil {
		data, err = os.ReadFile(p.localPath)
		if errors.Is(err, os.ErrNotExist) {
			return model.Digest{}, nil
		}
	} else {
		data, err = p.store.Get(ctx, LatestKey)
		if errors.Is(err, storage.ErrNotFound) {
			return model.Digest{}, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("read latest digest: %w", err)
	}
	return decode(data)
}

// ForDate returns the digest published on date (YYYY-MM-DD). History only
// exists in store mode.
func (p *Publisher) ForDate(ctx context.Context, date string) (model.Digest, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
	}
	if p.store == nil {
		return nil, ErrNotFound
	}
	data, err := p.store.Get(ctx, DatedKey(day))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read digest for %s: %w", date, err)
	}
	return decode(data)
}

func decode(data []byte) (model.Digest, error) {
	var digest model.Digest
	if err := json.Unmarshal(data, &digest); err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	if digest == nil {
		digest = model.Digest{}
	}
	return digest, nil
}
