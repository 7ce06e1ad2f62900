package storage

import "context"

// Guard confirms a bucket exists before anything is written to it. It never
// creates buckets.
type Guard struct {
	client Client
}

func NewGuard(client Client) *Guard {
	return &Guard{client: client}
}

// Confirm reports whether bucket exists. An absent bucket yields false and a
// nil error; a check that could not complete yields a *TransportError.
func (g *Guard) Confirm(ctx context.Context, bucket string) (bool, error) {
	exists, err := g.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, &TransportError{Op: OpBucketExists, Bucket: bucket, Err: err}
	}
	return exists, nil
}
