package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

const bboltFileName = "catalog.bolt"

var (
	agentsBucket   = []byte("agents")
	clustersBucket = []byte("clusters")
)

// BBoltStore persists catalog snapshots in a bbolt database. Database access
// is operation-scoped: each Save/Load opens and closes the file so multiple
// processes can share the store without holding long-lived locks.
type BBoltStore struct {
	dbPath string
}

// NewBBoltStore creates a bbolt-backed store rooted at basePath.
func NewBBoltStore(basePath string) (*BBoltStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create store directory")
	}
	return &BBoltStore{dbPath: filepath.Join(basePath, bboltFileName)}, nil
}

func (s *BBoltStore) withDB(operation func(*bbolt.DB) error) error {
	db, err := bbolt.Open(s.dbPath, 0o600, &bbolt.Options{
		Timeout: 2 * time.Second,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()
	return operation(db)
}

// Save replaces the stored snapshot. Records are keyed by their position so
// declaration order survives the round trip.
func (s *BBoltStore) Save(_ context.Context, snap catalog.Snapshot) error {
	return s.withDB(func(db *bbolt.DB) error {
		return db.Update(func(tx *bbolt.Tx) error {
			for _, name := range [][]byte{agentsBucket, clustersBucket} {
				if tx.Bucket(name) != nil {
					if err := tx.DeleteBucket(name); err != nil {
						return errors.Wrapf(err, "failed to reset bucket %s", name)
					}
				}
				if _, err := tx.CreateBucket(name); err != nil {
					return errors.Wrapf(err, "failed to create bucket %s", name)
				}
			}

			agents := tx.Bucket(agentsBucket)
			for i, rec := range snap.Agents {
				data, err := json.Marshal(rec)
				if err != nil {
					return errors.Wrapf(err, "failed to marshal agent '%s'", rec.ID)
				}
				if err := agents.Put(itob(uint64(i)), data); err != nil {
					return errors.Wrapf(err, "failed to store agent '%s'", rec.ID)
				}
			}

			clusters := tx.Bucket(clustersBucket)
			for i, rec := range snap.Clusters {
				data, err := json.Marshal(rec)
				if err != nil {
					return errors.Wrapf(err, "failed to marshal cluster '%s'", rec.Name)
				}
				if err := clusters.Put(itob(uint64(i)), data); err != nil {
					return errors.Wrapf(err, "failed to store cluster '%s'", rec.Name)
				}
			}
			return nil
		})
	})
}

// Load reads the stored snapshot, returning ErrNoCatalog when nothing has
// been saved.
func (s *BBoltStore) Load(_ context.Context) (catalog.Snapshot, error) {
	if _, err := os.Stat(s.dbPath); os.IsNotExist(err) {
		return catalog.Snapshot{}, ErrNoCatalog
	}

	var snap catalog.Snapshot
	err := s.withDB(func(db *bbolt.DB) error {
		return db.View(func(tx *bbolt.Tx) error {
			agents := tx.Bucket(agentsBucket)
			clusters := tx.Bucket(clustersBucket)
			if agents == nil || clusters == nil {
				return ErrNoCatalog
			}

			if err := agents.ForEach(func(_, v []byte) error {
				var rec catalog.AgentRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					return errors.Wrap(err, "failed to unmarshal agent record")
				}
				snap.Agents = append(snap.Agents, rec)
				return nil
			}); err != nil {
				return err
			}

			return clusters.ForEach(func(_, v []byte) error {
				var rec catalog.ClusterRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					return errors.Wrap(err, "failed to unmarshal cluster record")
				}
				snap.Clusters = append(snap.Clusters, rec)
				return nil
			})
		})
	})
	if err != nil {
		return catalog.Snapshot{}, err
	}
	return snap, nil
}

// Close is a no-op; connections are operation-scoped.
func (s *BBoltStore) Close() error {
	return nil
}

// itob encodes an index as a big-endian key so bucket iteration preserves
// insertion order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
