// Package store provides the bbolt-backed implementation of
// resolve.RepositoryReader: the repository database go-depsolve's query
// server persists its package data in, repurposed from the teacher's
// build-attempt tracking database to repository tracking.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"

	"go-depsolve/resolve"
)

// Bucket names for the bbolt database.
const (
	BucketBinaries = "binaries"
	BucketSources  = "sources"
	BucketProvides = "provides"
	BucketFiles    = "files"
	BucketRequires = "requires"
	BucketSubpacks = "subpacks"
	BucketMeta     = "meta"
)

// MetaSchemaVersionKey is the key in BucketMeta holding the schema version,
// written by migration.MigrateLegacyIndex and read back by SchemaVersion.
// OpenStore does not check it.
const MetaSchemaVersionKey = "schema_version"

// BoltStore wraps a bbolt database holding the full repository data set:
// binaries, sources, provides/files indexes, requires edges, and subpacks.
// It implements resolve.RepositoryReader directly, so a *BoltStore can be
// handed to resolve.NewRAL without adaptation.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// OpenStore opens or creates a bbolt database at path, initializing all
// required buckets if they don't already exist.
func OpenStore(path string) (*BoltStore, error) {
	bdb, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}

	buckets := []string{BucketBinaries, BucketSources, BucketProvides, BucketFiles, BucketRequires, BucketSubpacks, BucketMeta}
	err = bdb.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return &StoreError{Op: "create bucket", Bucket: name, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}

	return &BoltStore{db: bdb, path: path}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SchemaVersion returns the stored schema version, or 0 if never set.
func (s *BoltStore) SchemaVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketMeta))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketMeta, Err: ErrBucketNotFound}
		}
		data := bucket.Get([]byte(MetaSchemaVersionKey))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &version)
	})
	return version, err
}

// SetSchemaVersion records the schema version, called once migration has
// populated the store.
func (s *BoltStore) SetSchemaVersion(version int) error {
	data, err := json.Marshal(version)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketMeta))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketMeta, Err: ErrBucketNotFound}
		}
		return bucket.Put([]byte(MetaSchemaVersionKey), data)
	})
}

func binaryKey(repoID, name string) []byte {
	return []byte(repoID + "\x00b\x00" + name)
}

func sourceKey(repoID, name string) []byte {
	return []byte(repoID + "\x00s\x00" + name)
}

func componentKey(repoID, component string) []byte {
	return []byte(repoID + "\x00" + component)
}

func requiresKey(pkgKey string, kind resolve.RequireKind) []byte {
	return []byte(pkgKey + "\x00" + string(kind))
}

func subpacksKey(repoID, sourceName string) []byte {
	return []byte(repoID + "\x00" + sourceName)
}

// PutBinary writes (or overwrites) one binary package row. If row.Key is
// empty, it's derived from RepoID and Name so callers building rows fresh
// from an import source don't need to precompute the primary key.
func (s *BoltStore) PutBinary(row resolve.BinaryRow) error {
	if row.RepoID == "" || row.Name == "" {
		return &StoreError{Op: "put binary", Err: fmt.Errorf("repo id and name are required")}
	}
	if row.Key == "" {
		row.Key = string(binaryKey(row.RepoID, row.Name))
	}
	data, err := json.Marshal(row)
	if err != nil {
		return &StoreError{Op: "marshal binary", Err: err}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketBinaries))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketBinaries, Err: ErrBucketNotFound}
		}
		return bucket.Put(binaryKey(row.RepoID, row.Name), data)
	})
}

// PutSource writes (or overwrites) one source package row.
func (s *BoltStore) PutSource(row resolve.SourceRow) error {
	if row.RepoID == "" || row.Name == "" {
		return &StoreError{Op: "put source", Err: fmt.Errorf("repo id and name are required")}
	}
	if row.Key == "" {
		row.Key = string(sourceKey(row.RepoID, row.Name))
	}
	data, err := json.Marshal(row)
	if err != nil {
		return &StoreError{Op: "marshal source", Err: err}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketSources))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketSources, Err: ErrBucketNotFound}
		}
		return bucket.Put(sourceKey(row.RepoID, row.Name), data)
	})
}

// PutProvides records that component is provided by refs within repoID,
// sorting by primary key so ProvidersOf's lowest-key tie-break is a cheap
// first-element read.
func (s *BoltStore) PutProvides(repoID, component string, refs []resolve.ProviderRef) error {
	return s.putRefs(BucketProvides, repoID, component, refs)
}

// PutFile records that component matches a shipped file of refs within
// repoID: the fallback ProvidersOf consults when provides has no match.
func (s *BoltStore) PutFile(repoID, component string, refs []resolve.ProviderRef) error {
	return s.putRefs(BucketFiles, repoID, component, refs)
}

func (s *BoltStore) putRefs(bucketName, repoID, component string, refs []resolve.ProviderRef) error {
	sorted := make([]resolve.ProviderRef, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	data, err := json.Marshal(sorted)
	if err != nil {
		return &StoreError{Op: "marshal refs", Err: err}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: bucketName, Err: ErrBucketNotFound}
		}
		return bucket.Put(componentKey(repoID, component), data)
	})
}

// PutRequires records the components a package (by primary key) requires,
// of the given kind.
func (s *BoltStore) PutRequires(pkgKey string, kind resolve.RequireKind, components []string) error {
	data, err := json.Marshal(components)
	if err != nil {
		return &StoreError{Op: "marshal requires", Err: err}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketRequires))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketRequires, Err: ErrBucketNotFound}
		}
		return bucket.Put(requiresKey(pkgKey, kind), data)
	})
}

// PutSubpacks records the binary names a source package produces within a
// repository.
func (s *BoltStore) PutSubpacks(repoID, sourceName string, binaryNames []string) error {
	data, err := json.Marshal(binaryNames)
	if err != nil {
		return &StoreError{Op: "marshal subpacks", Err: err}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketSubpacks))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketSubpacks, Err: ErrBucketNotFound}
		}
		return bucket.Put(subpacksKey(repoID, sourceName), data)
	})
}

// BinariesIn implements resolve.RepositoryReader.
func (s *BoltStore) BinariesIn(repoID string) ([]resolve.BinaryRow, error) {
	var rows []resolve.BinaryRow
	prefix := []byte(repoID + "\x00b\x00")
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketBinaries))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketBinaries, Err: ErrBucketNotFound}
		}
		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var row resolve.BinaryRow
			if err := json.Unmarshal(v, &row); err != nil {
				return &StoreError{Op: "unmarshal binary", Bucket: BucketBinaries, Err: err}
			}
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

// SourcesIn implements resolve.RepositoryReader.
func (s *BoltStore) SourcesIn(repoID string) ([]resolve.SourceRow, error) {
	var rows []resolve.SourceRow
	prefix := []byte(repoID + "\x00s\x00")
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketSources))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketSources, Err: ErrBucketNotFound}
		}
		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var row resolve.SourceRow
			if err := json.Unmarshal(v, &row); err != nil {
				return &StoreError{Op: "unmarshal source", Bucket: BucketSources, Err: err}
			}
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

// RequiresOf implements resolve.RepositoryReader.
func (s *BoltStore) RequiresOf(pkgKey string, kind resolve.RequireKind) ([]string, error) {
	var components []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketRequires))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketRequires, Err: ErrBucketNotFound}
		}
		data := bucket.Get(requiresKey(pkgKey, kind))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &components)
	})
	return components, err
}

// ProvidersOf implements resolve.RepositoryReader: provides first, files on
// a provides miss.
func (s *BoltStore) ProvidersOf(component, repoID string) ([]resolve.ProviderRef, error) {
	refs, err := s.refsFrom(BucketProvides, repoID, component)
	if err != nil {
		return nil, err
	}
	if len(refs) > 0 {
		return refs, nil
	}
	return s.refsFrom(BucketFiles, repoID, component)
}

func (s *BoltStore) refsFrom(bucketName, repoID, component string) ([]resolve.ProviderRef, error) {
	var refs []resolve.ProviderRef
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: bucketName, Err: ErrBucketNotFound}
		}
		data := bucket.Get(componentKey(repoID, component))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &refs)
	})
	return refs, err
}

// BinaryToSource implements resolve.RepositoryReader.
func (s *BoltStore) BinaryToSource(binaryName, repoID string) (string, bool, error) {
	var row resolve.BinaryRow
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketBinaries))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketBinaries, Err: ErrBucketNotFound}
		}
		data := bucket.Get(binaryKey(repoID, binaryName))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &row); err != nil {
			return &StoreError{Op: "unmarshal binary", Bucket: BucketBinaries, Err: err}
		}
		found = row.SourceName != ""
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return row.SourceName, found, nil
}

// SubpacksOf implements resolve.RepositoryReader.
func (s *BoltStore) SubpacksOf(sourceName, repoID string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketSubpacks))
		if bucket == nil {
			return &StoreError{Op: "get bucket", Bucket: BucketSubpacks, Err: ErrBucketNotFound}
		}
		data := bucket.Get(subpacksKey(repoID, sourceName))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &names)
	})
	return names, err
}

var _ resolve.RepositoryReader = (*BoltStore)(nil)
