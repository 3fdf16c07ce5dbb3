// Package firestorestore keeps board records in Cloud Firestore, the document
// database behind the Firebase project the web client talks to directly.
//
// Collections mirror the Mongo backend: announcements, assignments, admins.
// Admin documents are keyed by folded email so lookups are a single Get.
package firestorestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// New returns a Backend whose repositories share one Firestore client.
func New(client *firestore.Client) records.Backend {
	return records.Backend{
		Name:          "firestore",
		Announcements: NewAnnouncements(client),
		Assignments:   NewAssignments(client),
		Admins:        NewAdmins(client),
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// count runs a COUNT aggregation over q.
func count(ctx context.Context, q firestore.Query) (int64, error) {
	res, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["total"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("firestore count: unexpected result type %T", res["total"])
	}
	return v.GetIntegerValue(), nil
}

// collect decodes every document of it into T, setting the id with setID.
func collect[T any](it *firestore.DocumentIterator, setID func(*T, string)) ([]T, error) {
	defer it.Stop()
	out := []T{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
		}
		setID(&v, snap.Ref.ID)
		out = append(out, v)
	}
}

// titlePrefix narrows q to titles starting with the folded query. Firestore
// requires the first OrderBy to match the range field, so callers re-sort
// the results themselves.
func titlePrefix(q firestore.Query, lo, hi string) firestore.Query {
	return q.Where("title_ci", ">=", lo).Where("title_ci", "<", hi).OrderBy("title_ci", firestore.Asc)
}

// Ping reads at most one announcement to confirm the client can reach the
// project.
func Ping(ctx context.Context, client *firestore.Client) error {
	it := client.Collection("announcements").Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}
