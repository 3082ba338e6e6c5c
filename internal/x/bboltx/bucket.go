package bboltx

import "go.etcd.io/bbolt"

var (
	_ BucketParent = (*bbolt.Tx)(nil)
	_ BucketParent = (*bbolt.Bucket)(nil)
)

// BucketParent is an interface for things that contain buckets.
type BucketParent interface {
	CreateBucketIfNotExists([]byte) (*bbolt.Bucket, error)
	Bucket([]byte) *bbolt.Bucket
}

// CreateBucketIfNotExists creates nested buckets with names given by the
// elements of path.
func CreateBucketIfNotExists(p BucketParent, path ...[]byte) *bbolt.Bucket {
	if len(path) == 0 {
		panic("at least one path element must be provided")
	}

	var (
		b   *bbolt.Bucket
		err error
	)

	for _, n := range path {
		b, err = p.CreateBucketIfNotExists(n)
		Must(err)

		p = b
	}

	return b
}

// Bucket gets nested buckets with names given by the elements of path.
//
// It returns nil if any of the nested buckets does not exist.
func Bucket(p BucketParent, path ...[]byte) (b *bbolt.Bucket) {
	if len(path) == 0 {
		panic("at least one path element must be provided")
	}

	for _, n := range path {
		b = p.Bucket(n)
		if b == nil {
			return nil
		}

		p = b
	}

	return b
}

// TryBucket gets nested buckets with names given by the elements of path.
//
// ok is false if any of the nested buckets does not exist.
func TryBucket(p BucketParent, path ...[]byte) (b *bbolt.Bucket, ok bool) {
	b = Bucket(p, path...)
	return b, b != nil
}

// Put writes a value to a bucket.
func Put(b *bbolt.Bucket, k, v []byte) {
	err := b.Put(k, v)
	Must(err)
}

// PutPath writes a value at the key given by the final element of path,
// creating the intermediate buckets as necessary.
func PutPath(p BucketParent, v []byte, path ...[]byte) {
	if len(path) < 2 {
		panic("at least two path elements must be provided")
	}

	n := len(path) - 1
	b := CreateBucketIfNotExists(p, path[:n]...)
	Put(b, path[n], v)
}

// GetPath reads the value at the key given by the final element of path.
//
// It returns nil if any of the intermediate buckets do not exist.
func GetPath(p BucketParent, path ...[]byte) []byte {
	if len(path) < 2 {
		panic("at least two path elements must be provided")
	}

	n := len(path) - 1
	b := Bucket(p, path[:n]...)
	if b == nil {
		return nil
	}

	return b.Get(path[n])
}

// DeletePath removes the key given by the final element of path.
//
// It does nothing if any of the intermediate buckets do not exist.
func DeletePath(p BucketParent, path ...[]byte) {
	if len(path) < 2 {
		panic("at least two path elements must be provided")
	}

	n := len(path) - 1
	b := Bucket(p, path[:n]...)
	if b == nil {
		return
	}

	err := b.Delete(path[n])
	Must(err)
}
