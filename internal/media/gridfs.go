package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BucketName is the GridFS bucket holding uploads
const BucketName = "media"

// GridFSStore keeps uploads in a MongoDB GridFS bucket
type GridFSStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSStore opens the media bucket of db
func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(BucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

// Save streams r into the bucket and returns the hex id of the new file
func (s *GridFSStore) Save(ctx context.Context, ownerID uint, filename, contentType string, r io.Reader) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "owner_id", Value: int64(ownerID)},
		{Key: "content_type", Value: contentType},
	})
	id, err := s.bucket.UploadFromStream(filename, r, opts)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	return id.Hex(), nil
}

// Open returns a reader over the stored file
func (s *GridFSStore) Open(ctx context.Context, id string) (*Object, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup("content_type").StringValueOK(); ok {
			contentType = ct
		}
	}
	return &Object{ReadCloser: stream, ContentType: contentType, Size: file.Length}, nil
}
