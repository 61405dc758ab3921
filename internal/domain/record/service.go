package record

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/blobstore"
)

type Service struct {
	repo  Repository
	blobs blobstore.BlobStore
}

func NewService(repo Repository, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// Create authors a new record on behalf of the calling principal.
func (s *Service) Create(ctx context.Context, p *auth.Principal, rec *MedicalRecord) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rec.Title == "" {
		return fmt.Errorf("title is required")
	}
	author, err := uuid.Parse(p.Subject)
	if err != nil {
		return fmt.Errorf("invalid author subject: %w", err)
	}
	rec.AuthorID = author
	rec.Signed = false
	rec.SignedBy = nil
	rec.SignedAt = nil
	return s.repo.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Update rewrites title and body. Only the author or an administrator may
// edit, and signed records are immutable.
func (s *Service) Update(ctx context.Context, p *auth.Principal, id uuid.UUID, title, body string) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Signed {
		return nil, ErrRecordSigned
	}
	if err := s.requireAuthorOrAdmin(p, rec); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	rec.Title = title
	rec.Body = body
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Sign freezes the record. Only clinicians sign; administrators manage
// accounts, not clinical content.
func (s *Service) Sign(ctx context.Context, p *auth.Principal, id uuid.UUID, at time.Time) (*MedicalRecord, error) {
	if p.Role != auth.RoleClinician {
		return nil, fmt.Errorf("%w: signing requires a clinician", ErrNotAuthor)
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Signed {
		return nil, ErrRecordSigned
	}
	signer, err := uuid.Parse(p.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid signer subject: %w", err)
	}
	rec.Signed = true
	rec.SignedBy = &signer
	rec.SignedAt = &at
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes an unsigned record along with its attachments.
// Administrator only.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	if p.Role != auth.RoleAdministrator {
		return ErrNotAuthor
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Signed {
		return ErrRecordSigned
	}
	attachments, err := s.repo.ListAttachments(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range attachments {
		if err := s.blobs.Delete(ctx, a.BlobID); err != nil {
			return fmt.Errorf("deleting blob %s: %w", a.BlobID, err)
		}
		if err := s.repo.DeleteAttachment(ctx, a.ID); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

// UploadAttachment stores content in the blobstore and records the
// metadata row. Signed records accept no new attachments.
func (s *Service) UploadAttachment(ctx context.Context, p *auth.Principal, recordID uuid.UUID, fileName, contentType string, content io.Reader) (*Attachment, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Signed {
		return nil, ErrRecordSigned
	}
	creator, err := uuid.Parse(p.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid uploader subject: %w", err)
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		RecordID:    recordID.String(),
		FileName:    fileName,
		ContentType: contentType,
		CreatedBy:   p.Subject,
	}, content)
	if err != nil {
		return nil, err
	}

	a := &Attachment{
		RecordID:    recordID,
		BlobID:      meta.ID,
		FileName:    meta.FileName,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Hash:        meta.Hash,
		CreatedBy:   creator,
	}
	if err := s.repo.AddAttachment(ctx, a); err != nil {
		// Roll back the orphaned blob; the metadata row is the source of truth.
		_ = s.blobs.Delete(ctx, meta.ID)
		return nil, err
	}
	return a, nil
}

func (s *Service) ListAttachments(ctx context.Context, recordID uuid.UUID) ([]*Attachment, error) {
	if _, err := s.repo.GetByID(ctx, recordID); err != nil {
		return nil, err
	}
	return s.repo.ListAttachments(ctx, recordID)
}

// DownloadAttachment streams the stored content. The caller owns the reader.
func (s *Service) DownloadAttachment(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Attachment, error) {
	a, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.blobs.Download(ctx, a.BlobID)
	if err != nil {
		return nil, nil, err
	}
	return rc, a, nil
}

// DeleteAttachment removes an attachment from an unsigned record.
func (s *Service) DeleteAttachment(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	a, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	rec, err := s.repo.GetByID(ctx, a.RecordID)
	if err != nil {
		return err
	}
	if rec.Signed {
		return ErrRecordSigned
	}
	if err := s.requireAuthorOrAdmin(p, rec); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, a.BlobID); err != nil {
		return fmt.Errorf("deleting blob %s: %w", a.BlobID, err)
	}
	return s.repo.DeleteAttachment(ctx, id)
}

func (s *Service) requireAuthorOrAdmin(p *auth.Principal, rec *MedicalRecord) error {
	if p.Role == auth.RoleAdministrator {
		return nil
	}
	if p.Subject == rec.AuthorID.String() {
		return nil
	}
	return ErrNotAuthor
}
