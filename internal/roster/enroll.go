package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/faceapi"
)

// Detector is the face detection surface enrollment needs.
type Detector interface {
	DetectFaces(ctx context.Context, imageData []byte) (*faceapi.DetectResponse, error)
}

// ErrNoFaceDetected is returned when the enrollment photo contains no face.
var ErrNoFaceDetected = errors.New("no face detected in image")

// ErrAmbiguousEnrollment is returned when the enrollment photo contains more
// than one face. Enrollment needs exactly one identity per photo; which face
// belongs to the student cannot be decided automatically.
var ErrAmbiguousEnrollment = errors.New("multiple faces detected; enrollment photo must contain exactly one face")

// DuplicateRollNumberError reports an enrollment rejected because the roll
// number is already taken.
type DuplicateRollNumberError struct {
	RollNumber string
}

func (e *DuplicateRollNumberError) Error() string {
	return fmt.Sprintf("roll number %s is already enrolled", e.RollNumber)
}

// Enroller adds students: detects the face, persists the record and updates
// the in-memory roster.
type Enroller struct {
	detector Detector
	repo     database.StudentRepository
	store    *Store
	dim      int
}

// NewEnroller creates an enroller bound to a detector, a repository and the
// roster store.
func NewEnroller(detector Detector, repo database.StudentRepository, store *Store, dim int) *Enroller {
	return &Enroller{
		detector: detector,
		repo:     repo,
		store:    store,
		dim:      dim,
	}
}

// Enroll registers a new student from a photo. The photo must contain
// exactly one face; its embedding becomes the student's identity. The
// student is persisted first and added to the live roster only after the
// insert succeeds, so a storage failure leaves the roster unchanged.
func (e *Enroller) Enroll(ctx context.Context, name, rollNumber string, imageData []byte, imagePath string) (*database.Student, error) {
	name = strings.TrimSpace(name)
	rollNumber = strings.TrimSpace(rollNumber)
	if name == "" {
		return nil, errors.New("student name must not be empty")
	}
	if rollNumber == "" {
		return nil, errors.New("roll number must not be empty")
	}

	resp, err := e.detector.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("detecting face: %w", err)
	}
	switch {
	case len(resp.Faces) == 0:
		return nil, ErrNoFaceDetected
	case len(resp.Faces) > 1:
		return nil, ErrAmbiguousEnrollment
	}

	embedding := resp.Faces[0].Embedding
	if err := database.ValidateEmbedding(embedding, e.dim); err != nil {
		return nil, fmt.Errorf("embedding from detector: %w", err)
	}

	student := &database.Student{
		ID:         uuid.NewString(),
		Name:       name,
		RollNumber: rollNumber,
		Embedding:  embedding,
		ImagePath:  imagePath,
		CreatedAt:  time.Now().UTC(),
	}

	if err := e.repo.CreateStudent(ctx, student); err != nil {
		if errors.Is(err, database.ErrRollNumberConflict) {
			return nil, &DuplicateRollNumberError{RollNumber: rollNumber}
		}
		return nil, fmt.Errorf("storing student: %w", err)
	}

	if err := e.store.Insert(*student); err != nil {
		// The database accepted the student, so a store conflict here means
		// the roster diverged from storage. Surface it instead of hiding it.
		return nil, fmt.Errorf("updating roster: %w", err)
	}

	return student, nil
}

// Withdraw removes a student from storage and the live roster.
func (e *Enroller) Withdraw(ctx context.Context, studentID string) error {
	if err := e.repo.DeleteStudent(ctx, studentID); err != nil {
		return err
	}
	e.store.Remove(studentID)
	return nil
}
