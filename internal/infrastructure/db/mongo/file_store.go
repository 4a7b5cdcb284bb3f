package mongo

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

var _ ports.FileStore = (*FileStore)(nil)

// FileStore keeps binaries in GridFS, one bucket per catalog kind.
type FileStore struct {
	db *mongo.Database
}

func NewFileStore(db *mongo.Database) *FileStore {
	return &FileStore{db: db}
}

type gridFile struct {
	ID       primitive.ObjectID `bson:"_id"`
	Length   int64              `bson:"length"`
	Metadata struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

func (s *FileStore) bucket(name string) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket %s: %w", name, err)
	}
	return b, nil
}

func (s *FileStore) find(ctx context.Context, b *gridfs.Bucket, filename string) ([]gridFile, error) {
	cur, err := b.FindContext(ctx, bson.M{"filename": filename})
	if err != nil {
		return nil, fmt.Errorf("gridfs find %s: %w", filename, err)
	}
	var files []gridFile
	if err := cur.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("gridfs decode %s: %w", filename, err)
	}
	return files, nil
}

// Save stores r under filename and then removes the files it replaces.
func (s *FileStore) Save(ctx context.Context, bucket, filename string, r io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}

	old, err := s.find(ctx, b, filename)
	if err != nil {
		return err
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	upload := func() error {
		_, err := b.UploadFromStream(filename, r, opts)
		return err
	}
	remove := func(id primitive.ObjectID) error {
		return b.DeleteContext(ctx, id)
	}
	return replaceFile(filename, old, upload, remove)
}

// replaceFile uploads first and deletes the earlier files only after the
// upload succeeded. A failed upload leaves them untouched.
func replaceFile(filename string, old []gridFile, upload func() error, remove func(primitive.ObjectID) error) error {
	if err := upload(); err != nil {
		return fmt.Errorf("gridfs upload %s: %w", filename, err)
	}
	for _, f := range old {
		if err := remove(f.ID); err != nil {
			return fmt.Errorf("gridfs delete %s: %w", filename, err)
		}
	}
	return nil
}

// Fetch opens the single file stored under filename.
func (s *FileStore) Fetch(ctx context.Context, bucket, filename string) (*ports.File, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}

	files, err := s.find(ctx, b, filename)
	if err != nil {
		return nil, err
	}
	switch len(files) {
	case 0:
		return nil, domain.ErrFileNotFound
	case 1:
	default:
		return nil, domain.ErrMultipleFiles
	}

	stream, err := b.OpenDownloadStream(files[0].ID)
	if err != nil {
		return nil, fmt.Errorf("gridfs open %s: %w", filename, err)
	}
	return &ports.File{
		Filename:    filename,
		ContentType: files[0].Metadata.ContentType,
		Length:      files[0].Length,
		Content:     stream,
	}, nil
}
