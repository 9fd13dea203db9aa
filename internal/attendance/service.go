package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/faceapi"
	"github.com/kozaktomas/rollcall/internal/recognition"
	"github.com/kozaktomas/rollcall/internal/roster"
)

// Detector is the face detection surface attendance capture needs.
type Detector interface {
	DetectFaces(ctx context.Context, imageData []byte) (*faceapi.DetectResponse, error)
}

// ErrNoFaceDetected is returned when the capture image contains no face.
var ErrNoFaceDetected = errors.New("no face detected in image")

// Outcome is the result of one successful match-and-record.
type Outcome struct {
	Match recognition.Match
	// Record is nil when the student was already marked for today.
	Record        *database.AttendanceRecord
	AlreadyMarked bool
	Date          string
}

// FaceOutcome is the per-face result of a group capture. Exactly one of
// Outcome and Err is set.
type FaceOutcome struct {
	FaceIndex int
	Outcome   *Outcome
	Err       error
}

// Service wires detection, matching and the ledger into the capture
// operations the API and CLI expose.
type Service struct {
	detector Detector
	matcher  recognition.Matcher
	store    *roster.Store
	ledger   *Ledger
	sessions database.SessionRepository
}

// NewService creates an attendance capture service.
func NewService(detector Detector, matcher recognition.Matcher, store *roster.Store, ledger *Ledger, sessions database.SessionRepository) *Service {
	return &Service{
		detector: detector,
		matcher:  matcher,
		store:    store,
		ledger:   ledger,
		sessions: sessions,
	}
}

// MatchAndRecord identifies the single face in the image and marks the
// matched student present in the session. The roster snapshot is taken once,
// so concurrent enrollments do not affect an in-flight capture. A repeated
// capture of the same student on the same day returns
// DuplicateAttendanceError.
func (s *Service) MatchAndRecord(ctx context.Context, sessionID string, imageData []byte) (*Outcome, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	resp, err := s.detector.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("detecting face: %w", err)
	}
	if len(resp.Faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	// Single-subject capture uses the first face; kiosks point the camera at
	// one student at a time. Group photos go through MatchAndRecordAll.
	match, rec, err := s.recordFace(ctx, sessionID, resp.Faces[0].Embedding, s.store.Snapshot())
	if err != nil {
		return nil, err
	}
	return &Outcome{Match: *match, Record: rec, Date: rec.Date}, nil
}

// MatchAndRecordAll identifies every face in the image and marks each
// matched student, returning a per-face outcome. Unrecognized faces and
// duplicate marks do not stop the remaining faces from being processed.
func (s *Service) MatchAndRecordAll(ctx context.Context, sessionID string, imageData []byte) ([]FaceOutcome, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	resp, err := s.detector.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}
	if len(resp.Faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	snapshot := s.store.Snapshot()
	outcomes := make([]FaceOutcome, 0, len(resp.Faces))
	for _, face := range resp.Faces {
		fo := FaceOutcome{FaceIndex: face.FaceIndex}
		match, rec, err := s.recordFace(ctx, sessionID, face.Embedding, snapshot)
		var dup *DuplicateAttendanceError
		switch {
		case err == nil:
			fo.Outcome = &Outcome{Match: *match, Record: rec, Date: rec.Date}
		case errors.As(err, &dup):
			// Within a group photo a student already marked today is a
			// benign per-face outcome, not a failure of the capture.
			fo.Outcome = &Outcome{Match: *match, AlreadyMarked: true, Date: dup.Date}
		default:
			fo.Err = err
		}
		outcomes = append(outcomes, fo)
	}
	return outcomes, nil
}

func (s *Service) recordFace(ctx context.Context, sessionID string, probe []float32, snapshot []recognition.Candidate) (*recognition.Match, *database.AttendanceRecord, error) {
	match, err := s.matcher.Match(probe, snapshot)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.ledger.Mark(ctx, match.StudentID, sessionID)
	if err != nil {
		return match, nil, err
	}
	return match, rec, nil
}
