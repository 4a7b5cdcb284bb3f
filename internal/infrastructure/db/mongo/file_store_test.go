package mongo

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReplaceFile_UploadsBeforeDeleting(t *testing.T) {
	old := []gridFile{{ID: primitive.NewObjectID()}, {ID: primitive.NewObjectID()}}

	var steps []string
	err := replaceFile("cover", old,
		func() error {
			steps = append(steps, "upload")
			return nil
		},
		func(id primitive.ObjectID) error {
			steps = append(steps, "delete "+id.Hex())
			return nil
		})
	if err != nil {
		t.Fatalf("replaceFile: %v", err)
	}

	want := []string{"upload", "delete " + old[0].ID.Hex(), "delete " + old[1].ID.Hex()}
	if len(steps) != len(want) {
		t.Fatalf("unexpected steps: %v", steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d: expected %q, got %q", i, want[i], steps[i])
		}
	}
}

func TestReplaceFile_FailedUploadKeepsExistingFiles(t *testing.T) {
	old := []gridFile{{ID: primitive.NewObjectID()}}
	boom := errors.New("connection reset")

	deleted := 0
	err := replaceFile("cover", old,
		func() error { return boom },
		func(primitive.ObjectID) error {
			deleted++
			return nil
		})
	if !errors.Is(err, boom) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if deleted != 0 {
		t.Fatalf("existing files must survive a failed upload, %d deleted", deleted)
	}
}
