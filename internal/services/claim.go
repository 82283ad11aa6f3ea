package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cmcs/claimserver/internal/events"
	"github.com/cmcs/claimserver/internal/storage"
	"github.com/cmcs/claimserver/internal/store"
	"github.com/cmcs/claimserver/types"
)

// MaxUploadSize is the largest accepted document, in bytes.
const MaxUploadSize = 10 << 20

// allowedExtensions is the document upload allow-list, keyed by
// lowercased extension.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".xlsx": true,
}

// ClaimStore is the persistence surface the claim service depends on.
type ClaimStore interface {
	List(ctx context.Context) ([]types.Claim, error)
	ListByUser(ctx context.Context, userID int) ([]types.Claim, error)
	ListByStatus(ctx context.Context, statusIDs ...int) ([]types.Claim, error)
	Get(ctx context.Context, id int) (types.Claim, error)
	Create(ctx context.Context, claim types.Claim) (types.Claim, error)
	Update(ctx context.Context, claim types.Claim) (types.Claim, error)
	Delete(ctx context.Context, id int) error
}

// DocumentStore is the persistence surface for document metadata.
type DocumentStore interface {
	Get(ctx context.Context, id int) (types.Document, error)
	ListByClaim(ctx context.Context, claimID int) ([]types.Document, error)
	Create(ctx context.Context, doc types.Document) (types.Document, error)
}

// UserGetter resolves users by id, for rate snapshots and role checks.
type UserGetter interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// BlobStore holds encrypted document content, addressed by object key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Upload is one file offered with a claim submission.
type Upload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

// UploadWarning reports a file that was skipped during a submission.
// A warning never aborts the batch; the remaining files still land.
type UploadWarning struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// Dashboard is a lecturer's view of their own claims.
type Dashboard struct {
	Claims   []types.Claim `json:"claims"`
	Total    int           `json:"total"`
	Approved int           `json:"approved"`
	Pending  int           `json:"pending"`
}

// ClaimService implements the claim lifecycle: submission with document
// uploads, role-gated workflow transitions, dashboards, and document
// retrieval.
type ClaimService struct {
	claims    ClaimStore
	documents DocumentStore
	users     UserGetter
	blobs     BlobStore
	publisher *events.Publisher
	logger    *zap.Logger
}

func NewClaimService(
	claims ClaimStore,
	documents DocumentStore,
	users UserGetter,
	blobs BlobStore,
	publisher *events.Publisher,
	logger *zap.Logger,
) *ClaimService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimService{
		claims:    claims,
		documents: documents,
		users:     users,
		blobs:     blobs,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit creates a claim for a lecturer. The hourly rate is snapshotted
// from the lecturer's account at this moment and never re-read; the
// total is derived from it. Uploaded files are gated per file: an
// oversized or disallowed file yields a warning and the batch continues.
func (s *ClaimService) Submit(ctx context.Context, userID int, hoursWorked float64, notes string, uploads []Upload) (types.Claim, []UploadWarning, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.Claim{}, nil, err
	}
	if user.Role != types.RoleLecturer {
		return types.Claim{}, nil, ErrRoleNotAllowed
	}

	if hoursWorked < types.MinHoursWorked || hoursWorked > types.MaxHoursWorked {
		return types.Claim{}, nil, ValidationError{Field: "hours_worked", Message: "must be between 0.5 and 180"}
	}
	if user.HourlyRate < types.MinHourlyRate || user.HourlyRate > types.MaxHourlyRate {
		return types.Claim{}, nil, ValidationError{Field: "hourly_rate", Message: "must be between 50 and 1000"}
	}
	if utf8.RuneCountInString(notes) > types.MaxNotesLength {
		return types.Claim{}, nil, ValidationError{Field: "notes", Message: "must be at most 500 characters"}
	}

	claim, err := s.claims.Create(ctx, types.Claim{
		UserID:      userID,
		HoursWorked: hoursWorked,
		HourlyRate:  user.HourlyRate,
		Notes:       notes,
	})
	if err != nil {
		return types.Claim{}, nil, err
	}

	warnings := s.attachUploads(ctx, &claim, uploads)

	s.logger.Info("claim submitted",
		zap.Int("claim_id", claim.ID),
		zap.Int("user_id", userID),
		zap.Float64("total_amount", claim.TotalAmount),
		zap.Int("documents", len(claim.Documents)),
		zap.Int("skipped", len(warnings)),
	)
	return claim, warnings, nil
}

// AttachDocuments uploads additional files to an existing claim owned
// by actorID. The same per-file gating as Submit applies.
func (s *ClaimService) AttachDocuments(ctx context.Context, claimID, actorID int, uploads []Upload) (types.Claim, []UploadWarning, error) {
	claim, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return types.Claim{}, nil, err
	}
	if claim.UserID != actorID {
		return types.Claim{}, nil, ErrRoleNotAllowed
	}

	warnings := s.attachUploads(ctx, &claim, uploads)
	return claim, warnings, nil
}

func (s *ClaimService) attachUploads(ctx context.Context, claim *types.Claim, uploads []Upload) []UploadWarning {
	var warnings []UploadWarning
	for _, upload := range uploads {
		ext := strings.ToLower(filepath.Ext(upload.FileName))
		if !allowedExtensions[ext] {
			warnings = append(warnings, UploadWarning{
				FileName: upload.FileName,
				Reason:   "file type not allowed; accepted: .pdf, .docx, .xlsx",
			})
			continue
		}
		if upload.Size > MaxUploadSize {
			warnings = append(warnings, UploadWarning{
				FileName: upload.FileName,
				Reason:   "file exceeds the 10MB limit",
			})
			continue
		}

		content, err := io.ReadAll(io.LimitReader(upload.Content, MaxUploadSize+1))
		if err != nil {
			warnings = append(warnings, UploadWarning{FileName: upload.FileName, Reason: "file could not be read"})
			continue
		}
		if int64(len(content)) > MaxUploadSize {
			warnings = append(warnings, UploadWarning{FileName: upload.FileName, Reason: "file exceeds the 10MB limit"})
			continue
		}

		doc, err := s.documents.Create(ctx, types.Document{
			ClaimID:  claim.ID,
			FileName: upload.FileName,
			FileType: ext,
			FileSize: int64(len(content)),
		})
		if err != nil {
			s.logger.Error("store document metadata",
				zap.Int("claim_id", claim.ID),
				zap.String("file_name", upload.FileName),
				zap.Error(err),
			)
			warnings = append(warnings, UploadWarning{FileName: upload.FileName, Reason: "file could not be stored"})
			continue
		}

		if err := s.blobs.Put(ctx, storage.DocumentKey(doc.ID), content); err != nil {
			s.logger.Error("store document blob",
				zap.Int("document_id", doc.ID),
				zap.Error(err),
			)
			warnings = append(warnings, UploadWarning{FileName: upload.FileName, Reason: "file could not be stored"})
			continue
		}

		claim.Documents = append(claim.Documents, doc)
	}
	return warnings
}

// Transition applies a workflow action to a claim on behalf of actorID.
// The transition table decides whether the actor's role may move the
// claim from its current status; everything else is rejected without a
// write.
func (s *ClaimService) Transition(ctx context.Context, claimID, actorID int, action Action) (types.Claim, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return types.Claim{}, err
	}

	claim, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return types.Claim{}, err
	}

	next, err := NextStatus(claim.StatusID, action, actor.Role)
	if err != nil {
		return types.Claim{}, err
	}

	from := claim.StatusID
	claim.StatusID = next
	if _, err := s.claims.Update(ctx, claim); err != nil {
		return types.Claim{}, err
	}

	s.logger.Info("claim transitioned",
		zap.Int("claim_id", claimID),
		zap.Int("actor_id", actorID),
		zap.String("action", string(action)),
		zap.Int("from_status", from),
		zap.Int("to_status", next),
	)
	s.publisher.ClaimStatusChanged(ctx, events.ClaimStatusChanged{
		ClaimID:    claimID,
		UserID:     claim.UserID,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   next,
		OccurredAt: time.Now(),
	})

	return s.claims.Get(ctx, claimID)
}

func (s *ClaimService) Get(ctx context.Context, id int) (types.Claim, error) {
	return s.claims.Get(ctx, id)
}

func (s *ClaimService) List(ctx context.Context) ([]types.Claim, error) {
	return s.claims.List(ctx)
}

// DashboardFor assembles a lecturer's own-claims view with summary
// counters. Approved counts settled-in-favour claims, pending counts
// everything still in flight.
func (s *ClaimService) DashboardFor(ctx context.Context, userID int) (Dashboard, error) {
	claims, err := s.claims.ListByUser(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	dashboard := Dashboard{Claims: claims, Total: len(claims)}
	for _, claim := range claims {
		switch claim.StatusID {
		case types.StatusManagerApproved, types.StatusPaid:
			dashboard.Approved++
		case types.StatusSubmitted, types.StatusCoordinatorApproved, types.StatusCoordinatorRejected:
			dashboard.Pending++
		}
	}
	return dashboard, nil
}

// CoordinatorPending lists claims awaiting coordinator review.
func (s *ClaimService) CoordinatorPending(ctx context.Context) ([]types.Claim, error) {
	return s.claims.ListByStatus(ctx, CoordinatorPendingStatuses...)
}

// ManagerPending lists claims a coordinator has decided, awaiting the
// manager's review. Coordinator rejections are included so the manager
// can override them.
func (s *ClaimService) ManagerPending(ctx context.Context) ([]types.Claim, error) {
	return s.claims.ListByStatus(ctx, ManagerPendingStatuses...)
}

// Past lists claims whose workflow has concluded.
func (s *ClaimService) Past(ctx context.Context) ([]types.Claim, error) {
	return s.claims.ListByStatus(ctx, PastStatuses...)
}

// Filtered lists claims for the manager overview filters.
func (s *ClaimService) Filtered(ctx context.Context, filter string) ([]types.Claim, error) {
	switch filter {
	case "", "all":
		return s.claims.List(ctx)
	case "approved":
		return s.claims.ListByStatus(ctx, types.StatusManagerApproved)
	case "paid":
		return s.claims.ListByStatus(ctx, types.StatusPaid)
	default:
		return nil, ValidationError{Field: "filter", Message: "must be one of all, approved, paid"}
	}
}

// DownloadDocument returns a document's metadata and decrypted content.
// A missing blob is reported the same way as a missing metadata row.
func (s *ClaimService) DownloadDocument(ctx context.Context, documentID int) (types.Document, []byte, error) {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return types.Document{}, nil, err
	}

	content, err := s.blobs.Get(ctx, storage.DocumentKey(doc.ID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return types.Document{}, nil, store.ErrNotFound
		}
		return types.Document{}, nil, fmt.Errorf("read document %d: %w", documentID, err)
	}
	return doc, content, nil
}

// Delete removes a claim and its document rows. Only the owner or HR
// may delete. Blob content is left behind; the metadata rows are the
// source of truth for what exists.
func (s *ClaimService) Delete(ctx context.Context, claimID, actorID int) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	claim, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return err
	}
	if claim.UserID != actorID && actor.Role != types.RoleHR {
		return ErrRoleNotAllowed
	}

	if err := s.claims.Delete(ctx, claimID); err != nil {
		return err
	}
	s.logger.Info("claim deleted",
		zap.Int("claim_id", claimID),
		zap.Int("actor_id", actorID),
	)
	return nil
}
