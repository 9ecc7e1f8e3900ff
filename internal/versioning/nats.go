package versioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// NATSStore persists version records in a JetStream key-value bucket.
// KeyValue.Create is atomic insert-if-absent, which enforces the unique
// (acrID, version) key the allocation protocol requires: two writers racing
// on the same number see exactly one success and one ErrVersionConflict.
type NATSStore struct {
	kv     jetstream.KeyValue
	logger *zap.Logger
}

// NewNATSStore opens (or creates) the bucket on an existing connection.
func NewNATSStore(ctx context.Context, nc *nats.Conn, bucket string, logger *zap.Logger) (*NATSStore, error) {
	if nc == nil {
		return nil, errors.New("nats connection is required")
	}
	if bucket == "" {
		bucket = "acr_versions"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := js.KeyValue(ctx, bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "Immutable ACR version records",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", bucket, err)
	}

	return &NATSStore{kv: kv, logger: logger}, nil
}

// versionKey builds the bucket key for (acrID, version). The version is
// zero-padded so lexical key order matches numeric order, and the acrID is
// sanitized because bucket keys are NATS subjects.
func versionKey(acrID string, version int) string {
	return fmt.Sprintf("acr.%s.v.%08d", sanitizeKeyPart(acrID), version)
}

// parseVersionKey extracts the version number from a bucket key.
func parseVersionKey(key string) (int, error) {
	i := strings.LastIndex(key, ".")
	if i < 0 {
		return 0, fmt.Errorf("malformed version key %q", key)
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed version key %q: %w", key, err)
	}
	return n, nil
}

// sanitizeKeyPart replaces characters that are not valid in a NATS subject
// token.
func sanitizeKeyPart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Insert stores a record if its key is absent.
func (s *NATSStore) Insert(ctx context.Context, v *Version) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode version: %w", err)
	}

	key := versionKey(v.AcrID, v.Version)
	if _, err := s.kv.Create(ctx, key, data); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to store version %s: %w", key, err)
	}

	s.logger.Debug("stored version",
		zap.String("acr_id", v.AcrID),
		zap.Int("version", v.Version),
	)
	return nil
}

// Get returns the record for (acrID, version).
func (s *NATSStore) Get(ctx context.Context, acrID string, version int) (*Version, error) {
	entry, err := s.kv.Get(ctx, versionKey(acrID, version))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to get version %d for %s: %w", version, acrID, err)
	}
	return decodeVersion(entry.Value())
}

// List returns every record for acrID in ascending version order.
func (s *NATSStore) List(ctx context.Context, acrID string) ([]*Version, error) {
	keys, err := s.keysFor(ctx, acrID)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys) // zero-padded keys sort numerically

	out := make([]*Version, 0, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue // purged between listing and read
			}
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		v, err := decodeVersion(entry.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Latest returns the highest-numbered record for acrID.
func (s *NATSStore) Latest(ctx context.Context, acrID string) (*Version, error) {
	keys, err := s.keysFor(ctx, acrID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrVersionNotFound
	}

	max := 0
	for _, key := range keys {
		n, err := parseVersionKey(key)
		if err != nil {
			return nil, err
		}
		if n > max {
			max = n
		}
	}
	return s.Get(ctx, acrID, max)
}

// Purge removes every record for acrID.
func (s *NATSStore) Purge(ctx context.Context, acrID string) (int, error) {
	keys, err := s.keysFor(ctx, acrID)
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		if err := s.kv.Purge(ctx, key); err != nil {
			return 0, fmt.Errorf("failed to purge %s: %w", key, err)
		}
	}

	if len(keys) > 0 {
		s.logger.Info("purged versions",
			zap.String("acr_id", acrID),
			zap.Int("count", len(keys)),
		)
	}
	return len(keys), nil
}

func (s *NATSStore) keysFor(ctx context.Context, acrID string) ([]string, error) {
	filter := fmt.Sprintf("acr.%s.v.*", sanitizeKeyPart(acrID))
	lister, err := s.kv.ListKeysFiltered(ctx, filter)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list versions for %s: %w", acrID, err)
	}

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}
	return keys, nil
}

func decodeVersion(data []byte) (*Version, error) {
	var v Version
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode version record: %w", err)
	}
	return &v, nil
}
