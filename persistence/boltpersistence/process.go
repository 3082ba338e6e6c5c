package boltpersistence

import (
	"context"
	"encoding/binary"

	"github.com/quayside/commerce/internal/x/bboltx"
	"github.com/quayside/commerce/persistence"
	"go.etcd.io/bbolt"
)

var (
	// stateBucketKey is the key for the root bucket for process state.
	//
	// The keys within it are saga identity keys. The values are buckets
	// containing the instances of that saga, keyed by instance ID. Each
	// instance bucket holds the individual fields of the instance.
	stateBucketKey = []byte("state")

	// tagBucketKey is the key for the root bucket of the correlation tag
	// index.
	//
	// The keys within it are saga identity keys, then correlation tags. The
	// innermost bucket holds the IDs of the instances that carry the tag.
	tagBucketKey = []byte("tags")

	revisionKey  = []byte("revision")
	tagKey       = []byte("tag")
	mediaTypeKey = []byte("mediatype")
	dataKey      = []byte("data")
)

// LoadProcessInstance loads the process instance with the given ID.
func (ds *dataStore) LoadProcessInstance(
	ctx context.Context,
	hk, id string,
) (_ persistence.ProcessInstance, err error) {
	defer bboltx.Recover(&err)

	db, release, err := ds.begin()
	if err != nil {
		return persistence.ProcessInstance{}, err
	}
	defer release()

	inst := persistence.ProcessInstance{
		HandlerKey: hk,
		InstanceID: id,
	}

	bboltx.View(
		db,
		func(tx *bbolt.Tx) {
			if b, ok := bboltx.TryBucket(
				tx,
				stateBucketKey,
				[]byte(hk),
				[]byte(id),
			); ok {
				loadProcessInstance(b, &inst)
			}
		},
	)

	return inst, nil
}

// LoadProcessInstanceByTag loads the process instance with the given
// correlation tag.
func (ds *dataStore) LoadProcessInstanceByTag(
	ctx context.Context,
	hk, tag string,
) (_ persistence.ProcessInstance, err error) {
	defer bboltx.Recover(&err)

	db, release, err := ds.begin()
	if err != nil {
		return persistence.ProcessInstance{}, err
	}
	defer release()

	inst := persistence.ProcessInstance{
		HandlerKey: hk,
	}

	bboltx.View(
		db,
		func(tx *bbolt.Tx) {
			ids := tagMatches(tx, hk, tag)

			switch len(ids) {
			case 1:
				inst.InstanceID = ids[0]
				b := bboltx.Bucket(
					tx,
					stateBucketKey,
					[]byte(hk),
					[]byte(inst.InstanceID),
				)
				loadProcessInstance(b, &inst)
			case 0:
				err = persistence.UnknownTagError{
					HandlerKey: hk,
					Tag:        tag,
				}
			default:
				err = persistence.AmbiguousTagError{
					HandlerKey:  hk,
					Tag:         tag,
					InstanceIDs: ids,
				}
			}
		},
	)

	return inst, err
}

// VisitSaveProcessInstance applies the changes in a "SaveProcessInstance"
// operation to the database.
func (c *committer) VisitSaveProcessInstance(
	ctx context.Context,
	op persistence.SaveProcessInstance,
) error {
	existing := persistence.ProcessInstance{}

	b, ok := bboltx.TryBucket(
		c.tx,
		stateBucketKey,
		[]byte(op.Instance.HandlerKey),
		[]byte(op.Instance.InstanceID),
	)
	if ok {
		loadProcessInstance(b, &existing)
	}

	if op.Instance.Revision != existing.Revision {
		return persistence.ConflictError{
			Cause: op,
		}
	}

	saveProcessInstance(c.tx, op.Instance)

	if existing.Tag != op.Instance.Tag {
		if existing.Tag != "" {
			bboltx.DeletePath(
				c.tx,
				tagBucketKey,
				[]byte(op.Instance.HandlerKey),
				[]byte(existing.Tag),
				[]byte(op.Instance.InstanceID),
			)
		}

		if op.Instance.Tag != "" {
			bboltx.PutPath(
				c.tx,
				nil,
				tagBucketKey,
				[]byte(op.Instance.HandlerKey),
				[]byte(op.Instance.Tag),
				[]byte(op.Instance.InstanceID),
			)
		}
	}

	return nil
}

// committer applies the operations in a batch to the database.
type committer struct {
	tx *bbolt.Tx
}

// saveProcessInstance writes inst to the database. inst.Revision is
// incremented before saving.
func saveProcessInstance(tx *bbolt.Tx, inst persistence.ProcessInstance) {
	b := bboltx.CreateBucketIfNotExists(
		tx,
		stateBucketKey,
		[]byte(inst.HandlerKey),
		[]byte(inst.InstanceID),
	)

	bboltx.Put(b, revisionKey, marshalUint64(inst.Revision+1))
	bboltx.Put(b, tagKey, []byte(inst.Tag))
	bboltx.Put(b, mediaTypeKey, []byte(inst.Packet.MediaType))
	bboltx.Put(b, dataKey, inst.Packet.Data)
}

// loadProcessInstance populates inst with the field values stored in b.
func loadProcessInstance(b *bbolt.Bucket, inst *persistence.ProcessInstance) {
	inst.Revision = unmarshalUint64(b.Get(revisionKey))
	inst.Tag = string(b.Get(tagKey))
	inst.Packet.MediaType = string(b.Get(mediaTypeKey))

	if data := b.Get(dataKey); len(data) != 0 {
		inst.Packet.Data = append([]byte(nil), data...)
	}
}

// tagMatches returns the IDs of the instances of the saga identified by hk
// that carry the given correlation tag.
func tagMatches(tx *bbolt.Tx, hk, tag string) []string {
	b, ok := bboltx.TryBucket(
		tx,
		tagBucketKey,
		[]byte(hk),
		[]byte(tag),
	)
	if !ok {
		return nil
	}

	var ids []string

	bboltx.Must(b.ForEach(
		func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		},
	))

	return ids
}

// marshalUint64 marshals a uint64 to its binary representation.
func marshalUint64(v uint64) []byte {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, v)
	return data
}

// unmarshalUint64 unmarshals a uint64 from its binary representation.
//
// A nil value is treated as zero.
func unmarshalUint64(data []byte) uint64 {
	if data == nil {
		return 0
	}

	return binary.BigEndian.Uint64(data)
}
