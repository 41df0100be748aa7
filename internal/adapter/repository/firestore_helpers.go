package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"servicemarket/pkg/errors"
)

func collect[T any](ctx context.Context, query firestore.Query) ([]*T, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	items := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, nil
}

func refs(ctx context.Context, query firestore.Query) ([]*firestore.DocumentRef, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]*firestore.DocumentRef, len(docs))
	for i, doc := range docs {
		out[i] = doc.Ref
	}
	return out, nil
}

// bulkApply runs write for every ref through a BulkWriter and returns how
// many writes succeeded. The first failed write is returned as the error.
func bulkApply(ctx context.Context, client *firestore.Client, docRefs []*firestore.DocumentRef, write func(*firestore.BulkWriter, *firestore.DocumentRef) (*firestore.BulkWriterJob, error)) (int, error) {
	if len(docRefs) == 0 {
		return 0, nil
	}

	bw := client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docRefs))
	var firstErr error
	for _, ref := range docRefs {
		job, err := write(bw, ref)
		if err != nil {
			firstErr = err
			break
		}
		jobs = append(jobs, job)
	}
	bw.End()

	applied := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		applied++
	}

	return applied, firstErr
}

func notFoundOr(err error, resource, message string) error {
	if status.Code(err) == codes.NotFound {
		return errors.NotFound(resource, err)
	}
	return errors.Dependency(message, err)
}
