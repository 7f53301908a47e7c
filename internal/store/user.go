package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
)

type userStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{
		Client:     client,
		Collection: client.Collection(usersCollection),
	}
}

func (us *userStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := us.Collection.Doc(user.UID).Create(ctx, user)
	if status.Code(err) == codes.AlreadyExists {
		return errs.NewAlreadyExistsError("user already exists")
	}
	if err != nil {
		return errs.NewDatabaseError("create", "failed to create user", err)
	}
	return nil
}

func (us *userStore) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := us.Collection.Doc(user.UID).Set(ctx, user, firestore.MergeAll)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update user", err)
	}
	return nil
}

func (us *userStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User

	doc, err := getDoc(ctx, us.Collection.Doc(uid), "user")
	if err != nil {
		return nil, err
	}
	if err := doc.DataTo(&user); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse user data", err)
	}

	return &user, nil
}

// ReassignOwner moves every record owned by fromUID under toUID. Documents are
// copied before the originals are deleted, so an interrupted run can be
// repeated. Settings already saved by toUID are kept.
func (us *userStore) ReassignOwner(ctx context.Context, fromUID, toUID string) error {
	bw := us.Client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	var moved []*firestore.DocumentRef

	for _, name := range ownedCollections {
		src := userCollection(us.Client, fromUID, name)
		dst := userCollection(us.Client, toUID, name)
		err := eachDoc(ctx, src.Query, name, func(snap *firestore.DocumentSnapshot) error {
			if name == settingsCollection {
				if _, err := dst.Doc(snap.Ref.ID).Get(ctx); err == nil {
					moved = append(moved, snap.Ref)
					return nil
				}
			}
			data := snap.Data()
			if _, ok := data["userId"]; ok {
				data["userId"] = toUID
			}
			job, err := bw.Set(dst.Doc(snap.Ref.ID), data)
			if err != nil {
				return err
			}
			jobs = append(jobs, job)
			moved = append(moved, snap.Ref)
			return nil
		})
		if err != nil {
			bw.End()
			return err
		}
	}

	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return errs.NewDatabaseError("update", "failed to copy records to new owner", err)
		}
	}

	if err := bulkDelete(ctx, us.Client, moved); err != nil {
		return errs.NewDatabaseError("delete", "failed to remove records from previous owner", err)
	}
	return nil
}
