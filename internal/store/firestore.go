package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/patient-payments/internal/errs"
)

// Every record lives under its owner: users/{uid}/{collection}/{id}.
const (
	usersCollection     = "users"
	insuranceCollection = "insurance_payments"
	venmoCollection     = "venmo_payments"
	settingsCollection  = "settings"
	settingsDocID       = "preferences"
)

// ownedCollections are moved as a unit when a user's records are reassigned.
var ownedCollections = []string{insuranceCollection, venmoCollection, settingsCollection}

func userCollection(client *firestore.Client, uid, name string) *firestore.CollectionRef {
	return client.Collection(usersCollection).Doc(uid).Collection(name)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// getDoc maps a missing document to a NotFoundError naming what.
func getDoc(ctx context.Context, ref *firestore.DocumentRef, what string) (*firestore.DocumentSnapshot, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NewNotFoundError(what + " not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get "+what, err)
	}
	return snap, nil
}

// deleteDoc fails with a NotFoundError when the document does not exist.
func deleteDoc(ctx context.Context, ref *firestore.DocumentRef, what string) error {
	_, err := ref.Delete(ctx, firestore.Exists)
	if err != nil {
		if isNotFound(err) {
			return errs.NewNotFoundError(what + " not found")
		}
		return errs.NewDatabaseError("delete", "failed to delete "+what, err)
	}
	return nil
}

// eachDoc walks a query, calling fn for every document. Errors from fn are
// returned as is.
func eachDoc(ctx context.Context, q firestore.Query, what string, fn func(*firestore.DocumentSnapshot) error) error {
	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return errs.NewDatabaseError("read", "failed to list "+what, err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
}

// bulkDelete removes refs with a BulkWriter and reports the first failure.
func bulkDelete(ctx context.Context, client *firestore.Client, refs []*firestore.DocumentRef) error {
	if len(refs) == 0 {
		return nil
	}

	bw := client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}

	// Flush and close the writer, then wait on each job for errors.
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}
