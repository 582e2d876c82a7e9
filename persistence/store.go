package persistence

import (
	"context"
	"errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// ErrNoSnapshot is returned by Load when the store holds no prior state.
var ErrNoSnapshot = eris.New("no snapshot found")

// SnapshotStore keeps the snapshot blob under a fixed key in a
// redis-protocol key-value store.
type SnapshotStore struct {
	client redis.Cmdable
	key    string
}

// NewSnapshotStore wraps a client. key is the fixed blob key.
func NewSnapshotStore(client redis.Cmdable, key string) *SnapshotStore {
	return &SnapshotStore{client: client, key: key}
}

// Save encodes and stores the snapshot. A failed save leaves any previously
// stored blob untouched.
func (s *SnapshotStore) Save(ctx context.Context, snap *Snapshot) error {
	blob, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return eris.Wrap(err, "storing snapshot blob")
	}
	return nil
}

// Load fetches and decodes the stored snapshot. Returns ErrNoSnapshot when
// the key is absent.
func (s *SnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	blob, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, eris.Wrap(err, "fetching snapshot blob")
	}
	return Decode(blob)
}

// NewEmbedded starts an in-process miniredis instance and returns a client
// connected to it plus a shutdown func. This is the default deployment: the
// engine needs a key-value store, not a network dependency.
func NewEmbedded() (*redis.Client, func(), error) {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		return nil, nil, eris.Wrap(err, "starting embedded store")
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	closer := func() {
		_ = client.Close()
		mr.Close()
	}
	return client, closer, nil
}
