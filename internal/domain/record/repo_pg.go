package record

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const recordCols = `id, patient_id, author_id, title, body, signed, signed_by, signed_at,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	rec.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medical_record (id, patient_id, author_id, title, body)
		VALUES ($1,$2,$3,$4,$5)`,
		rec.ID, rec.PatientID, rec.AuthorID, rec.Title, rec.Body,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medical_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+recordCols+` FROM medical_record WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medical_record SET
			title=$2, body=$3, signed=$4, signed_by=$5, signed_at=$6, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Title, rec.Body, rec.Signed, rec.SignedBy, rec.SignedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_record WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const attachmentCols = `id, record_id, blob_id, file_name, content_type, size, hash, created_by, created_at`

func (r *repoPG) AddAttachment(ctx context.Context, a *Attachment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO record_attachment (id, record_id, blob_id, file_name, content_type, size, hash, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.RecordID, a.BlobID, a.FileName, a.ContentType, a.Size, a.Hash, a.CreatedBy,
	)
	return err
}

func (r *repoPG) GetAttachment(ctx context.Context, id uuid.UUID) (*Attachment, error) {
	var a Attachment
	err := r.pool.QueryRow(ctx, `SELECT `+attachmentCols+` FROM record_attachment WHERE id = $1`, id).Scan(
		&a.ID, &a.RecordID, &a.BlobID, &a.FileName, &a.ContentType, &a.Size, &a.Hash, &a.CreatedBy, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) ListAttachments(ctx context.Context, recordID uuid.UUID) ([]*Attachment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+attachmentCols+` FROM record_attachment WHERE record_id = $1 ORDER BY created_at`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.RecordID, &a.BlobID, &a.FileName, &a.ContentType, &a.Size, &a.Hash, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, &a)
	}
	return attachments, rows.Err()
}

func (r *repoPG) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM record_attachment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := row.Scan(
		&rec.ID, &rec.PatientID, &rec.AuthorID, &rec.Title, &rec.Body,
		&rec.Signed, &rec.SignedBy, &rec.SignedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
