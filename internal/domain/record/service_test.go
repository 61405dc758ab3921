package record

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/blobstore"
)

type mockRepo struct {
	records     map[uuid.UUID]*MedicalRecord
	attachments map[uuid.UUID]*Attachment
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		records:     make(map[uuid.UUID]*MedicalRecord),
		attachments: make(map[uuid.UUID]*Attachment),
	}
}

func (m *mockRepo) Create(_ context.Context, r *MedicalRecord) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r
	return &out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var result []*MedicalRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			out := *r
			result = append(result, &out)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) Update(_ context.Context, r *MedicalRecord) error {
	if _, ok := m.records[r.ID]; !ok {
		return ErrNotFound
	}
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRepo) AddAttachment(_ context.Context, a *Attachment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.attachments[a.ID] = a
	return nil
}

func (m *mockRepo) GetAttachment(_ context.Context, id uuid.UUID) (*Attachment, error) {
	a, ok := m.attachments[id]
	if !ok {
		return nil, ErrAttachmentNotFound
	}
	out := *a
	return &out, nil
}

func (m *mockRepo) ListAttachments(_ context.Context, recordID uuid.UUID) ([]*Attachment, error) {
	var result []*Attachment
	for _, a := range m.attachments {
		if a.RecordID == recordID {
			out := *a
			result = append(result, &out)
		}
	}
	return result, nil
}

func (m *mockRepo) DeleteAttachment(_ context.Context, id uuid.UUID) error {
	if _, ok := m.attachments[id]; !ok {
		return ErrAttachmentNotFound
	}
	delete(m.attachments, id)
	return nil
}

func clinicianPrincipal() *auth.Principal {
	return &auth.Principal{Subject: uuid.NewString(), Role: auth.RoleClinician}
}

func adminPrincipal() *auth.Principal {
	return &auth.Principal{Subject: uuid.NewString(), Role: auth.RoleAdministrator}
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, blobstore.NewInMemoryBlobStore(0)), repo
}

func createRecord(t *testing.T, svc *Service, p *auth.Principal) *MedicalRecord {
	t.Helper()
	rec := &MedicalRecord{PatientID: uuid.New(), Title: "Visit note", Body: "Stable."}
	if err := svc.Create(context.Background(), p, rec); err != nil {
		t.Fatalf("createRecord: %v", err)
	}
	return rec
}

func TestCreateRecord_AuthorFromPrincipal(t *testing.T) {
	svc, _ := newTestService()
	p := clinicianPrincipal()

	rec := createRecord(t, svc, p)
	if rec.AuthorID.String() != p.Subject {
		t.Errorf("expected author %s, got %s", p.Subject, rec.AuthorID)
	}
	if rec.Signed {
		t.Error("new record must be unsigned")
	}
}

func TestCreateRecord_Validation(t *testing.T) {
	svc, _ := newTestService()
	p := clinicianPrincipal()

	if err := svc.Create(context.Background(), p, &MedicalRecord{Title: "x"}); err == nil {
		t.Error("expected error for missing patient")
	}
	if err := svc.Create(context.Background(), p, &MedicalRecord{PatientID: uuid.New()}); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestUpdateRecord_AuthorOnly(t *testing.T) {
	svc, _ := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	if _, err := svc.Update(context.Background(), author, rec.ID, "Amended", "New body"); err != nil {
		t.Fatalf("author update: %v", err)
	}

	other := clinicianPrincipal()
	if _, err := svc.Update(context.Background(), other, rec.ID, "Hijacked", ""); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}

	// Administrators may edit any unsigned record.
	if _, err := svc.Update(context.Background(), adminPrincipal(), rec.ID, "Corrected", "Body"); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestSignRecord(t *testing.T) {
	svc, _ := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	signed, err := svc.Sign(context.Background(), author, rec.ID, at)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !signed.Signed {
		t.Error("expected record to be signed")
	}
	if signed.SignedAt == nil || !signed.SignedAt.Equal(at) {
		t.Errorf("unexpected signed_at: %v", signed.SignedAt)
	}
	if signed.SignedBy == nil || signed.SignedBy.String() != author.Subject {
		t.Errorf("unexpected signed_by: %v", signed.SignedBy)
	}
}

func TestSignRecord_ClinicianOnly(t *testing.T) {
	svc, _ := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	for _, p := range []*auth.Principal{
		{Subject: uuid.NewString(), Role: auth.RoleNurse},
		adminPrincipal(),
	} {
		if _, err := svc.Sign(context.Background(), p, rec.ID, time.Now()); !errors.Is(err, ErrNotAuthor) {
			t.Errorf("role %s: expected ErrNotAuthor, got %v", p.Role, err)
		}
	}
}

func TestSignedRecordIsFrozen(t *testing.T) {
	svc, _ := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	if _, err := svc.Sign(context.Background(), author, rec.ID, time.Now()); err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Update(context.Background(), author, rec.ID, "Late edit", ""); !errors.Is(err, ErrRecordSigned) {
		t.Errorf("update: expected ErrRecordSigned, got %v", err)
	}
	if _, err := svc.Sign(context.Background(), author, rec.ID, time.Now()); !errors.Is(err, ErrRecordSigned) {
		t.Errorf("re-sign: expected ErrRecordSigned, got %v", err)
	}
	if _, err := svc.UploadAttachment(context.Background(), author, rec.ID, "late.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, ErrRecordSigned) {
		t.Errorf("upload: expected ErrRecordSigned, got %v", err)
	}
}

func TestUploadAndDownloadAttachment(t *testing.T) {
	svc, _ := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	content := "lab results"
	a, err := svc.UploadAttachment(context.Background(), author, rec.ID, "labs.txt", "text/plain", strings.NewReader(content))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if a.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), a.Size)
	}
	if a.BlobID == "" {
		t.Error("expected blob id to be set")
	}

	rc, meta, err := svc.DownloadAttachment(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != content {
		t.Errorf("expected %q, got %q", content, string(got))
	}
	if meta.FileName != "labs.txt" {
		t.Errorf("unexpected file name %s", meta.FileName)
	}

	list, err := svc.ListAttachments(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(list))
	}
}

func TestUploadAttachment_RejectedContentType(t *testing.T) {
	svc, _ := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	_, err := svc.UploadAttachment(context.Background(), author, rec.ID, "run.exe", "application/x-msdownload", strings.NewReader("x"))
	if !errors.Is(err, blobstore.ErrInvalidContentType) {
		t.Fatalf("expected ErrInvalidContentType, got %v", err)
	}
}

func TestDeleteAttachment_UnsignedOnly(t *testing.T) {
	svc, _ := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	a, err := svc.UploadAttachment(context.Background(), author, rec.ID, "scan.png", "image/png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := svc.Sign(context.Background(), author, rec.ID, time.Now()); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := svc.DeleteAttachment(context.Background(), author, a.ID); !errors.Is(err, ErrRecordSigned) {
		t.Fatalf("expected ErrRecordSigned, got %v", err)
	}
}

func TestDeleteAttachment(t *testing.T) {
	svc, repo := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	a, err := svc.UploadAttachment(context.Background(), author, rec.ID, "scan.png", "image/png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.DeleteAttachment(context.Background(), author, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetAttachment(context.Background(), a.ID); !errors.Is(err, ErrAttachmentNotFound) {
		t.Fatalf("expected row gone, got %v", err)
	}
	if _, _, err := svc.DownloadAttachment(context.Background(), a.ID); !errors.Is(err, ErrAttachmentNotFound) {
		t.Fatalf("expected download to fail, got %v", err)
	}
}

func TestDeleteRecord_AdminOnlyAndCleansBlobs(t *testing.T) {
	svc, repo := newTestService()
	author := clinicianPrincipal()
	rec := createRecord(t, svc, author)

	if _, err := svc.UploadAttachment(context.Background(), author, rec.ID, "scan.png", "image/png", strings.NewReader("img")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), author, rec.ID); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor for clinician, got %v", err)
	}

	if err := svc.Delete(context.Background(), adminPrincipal(), rec.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
	attachments, _ := repo.ListAttachments(context.Background(), rec.ID)
	if len(attachments) != 0 {
		t.Fatalf("expected attachments removed, got %d", len(attachments))
	}
}
